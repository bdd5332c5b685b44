package standalone

import (
	"github.com/billmania/foam-cutter/kinematics"
)

// MachineState is a snapshot of the controller
type MachineState struct {
	Position     kinematics.Pose   // current pose
	Joints       kinematics.Joints // joints of the last move, nil after G92
	Flags        kinematics.Flags  // flags fed to the next solver call
	AbsoluteMode bool              // G90 vs G91
	FeedRate     float64           // units per minute
	Ended        bool              // M2/M30 seen
	Moves        int               // completed moves
	Lines        int               // lines processed
}
