// RoomFit places appliances into a polygonal room, keeping the door swing
// and fridge door clearances free.
//
// Usage:
//
//	# Solve one scenario and write kitchen.result.json
//	roomfit solve kitchen.json
//
//	# Render the plan and labels for a solved scenario
//	roomfit render kitchen.json --format pdf,labels
//
//	# Solve every scenario in a directory and keep watching it
//	roomfit batch ./rooms --watch
//
//	# Build a scenario from a DXF floor plan and a catalog spreadsheet
//	roomfit import --room plan.dxf --catalog items.xlsx --door 1500,0,2300,0 -o kitchen.json
//
//	# Serve the engine over HTTP
//	roomfit serve --addr :8080
package main

func main() {
	Execute()
}
