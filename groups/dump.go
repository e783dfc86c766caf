package groups

import "blame/model"

// Names returns the display name of every player 0..Len()-1, in order.
// Used by the CLI's -debug dump and by result tables.
func Names(sg StateGroups, ts *model.TransitionSystem) []string {
	names := make([]string, sg.Len())
	for i := range names {
		names[i] = sg.GetName(i, ts)
	}
	return names
}
