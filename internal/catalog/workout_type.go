package catalog

import "fmt"

// WorkoutType is one of the six workout categories, each mapped
// to one face of the dice.
type WorkoutType string

const (
	Cardio      WorkoutType = "CARDIO"
	Strength    WorkoutType = "STRENGTH"
	Flexibility WorkoutType = "FLEXIBILITY"
	Core        WorkoutType = "CORE"
	Legs        WorkoutType = "LEGS"
	Arms        WorkoutType = "ARMS"
)

// AllTypes in dice face order, faces 1 through 6.
var AllTypes = []WorkoutType{
	Cardio, Strength, Flexibility, Core, Legs, Arms,
}

func (t WorkoutType) DisplayName() string {
	switch t {
	case Cardio:
		return "Cardio"
	case Strength:
		return "Strength"
	case Flexibility:
		return "Flexibility"
	case Core:
		return "Core"
	case Legs:
		return "Legs"
	case Arms:
		return "Arms"
	default:
		return string(t)
	}
}

// DiceFace returns the dice face (1-6) this workout type is mapped to.
func (t WorkoutType) DiceFace() int {
	for i, wt := range AllTypes {
		if wt == t {
			return i + 1
		}
	}
	return 0
}

// TypeForFace maps a dice face (1-6) to its workout type.
func TypeForFace(face int) (WorkoutType, error) {
	if face < 1 || face > len(AllTypes) {
		return "", fmt.Errorf("invalid dice face: %d", face)
	}
	return AllTypes[face-1], nil
}
