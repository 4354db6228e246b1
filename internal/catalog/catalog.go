// Package catalog holds the built-in exercise directory: five exercises
// per workout category, one category per dice face.
package catalog

// Definition is a single catalog entry, a concrete exercise to perform.
type Definition struct {
	Name        string
	Description string
	Duration    string
	Type        WorkoutType
}

var exercises = map[WorkoutType][]Definition{
	Cardio: {
		{"Jumping jacks", "Energetic jumps, arms and legs spread wide", "30 sec", Cardio},
		{"Running in place", "Knees up high", "45 sec", Cardio},
		{"Burpees", "Full cycle: squat, plank, push up, jump", "10 reps", Cardio},
		{"Arm scissors", "Fast horizontal arm swings", "30 sec", Cardio},
		{"Jump rope", "Simulated rope jumps", "1 min", Cardio},
	},
	Strength: {
		{"Push ups", "Classic floor push ups", "10-15 reps", Strength},
		{"Squats", "Deep squats with a straight back", "15-20 reps", Strength},
		{"Lunges", "Alternating lunges on each leg", "10 per leg", Strength},
		{"Wall push ups", "Standing push ups against a wall", "15-20 reps", Strength},
		{"Superman", "Lying face down, lift arms and legs", "10-15 reps", Strength},
	},
	Flexibility: {
		{"Toe touches", "Slow bends towards straight legs", "30 sec", Flexibility},
		{"Neck stretch", "Slow head turns and tilts", "1 min", Flexibility},
		{"Cat-cow", "On all fours, arch and round the back", "10 reps", Flexibility},
		{"Shoulder stretch", "Arms behind the back and stretch", "30 sec", Flexibility},
		{"Child's pose", "Sitting on heels, fold forward", "1 min", Flexibility},
	},
	Core: {
		{"Plank", "Hold the plank position", "30-60 sec", Core},
		{"Crunches", "Torso raises lying on the back", "15-20 reps", Core},
		{"Bicycle", "Simulated pedaling lying down", "20 reps", Core},
		{"Side plank", "Plank on the side, 15 sec per side", "30 sec", Core},
		{"Leg raises", "Straight leg raises lying on the back", "10-15 reps", Core},
	},
	Legs: {
		{"Sumo squats", "Wide squats, toes pointed out", "15 reps", Legs},
		{"Step ups", "Alternating step ups on a chair or stair", "10 per leg", Legs},
		{"Reverse lunges", "Backward lunges on each leg", "10 per leg", Legs},
		{"Wall sit", "Hold a squat against the wall", "30-45 sec", Legs},
		{"Side leg raises", "Standing leg raises to the side", "15 per leg", Legs},
	},
	Arms: {
		{"Knee push ups", "Push ups resting on the knees", "10-15 reps", Arms},
		{"Reverse dips", "Dips with the back to a chair", "10-12 reps", Arms},
		{"Plank walk ups", "Switch between forearm and hand plank", "10 reps", Arms},
		{"Arm circles", "Big circles with straight arms", "30 sec", Arms},
		{"Shadow boxing", "Punches in the air", "1 min", Arms},
	},
}

// Exercises returns the catalog entries for the given workout type.
// The returned slice is a copy and safe to hold on to.
func Exercises(t WorkoutType) []Definition {
	defs := exercises[t]
	out := make([]Definition, len(defs))
	copy(out, defs)
	return out
}

// Pick returns one exercise of the given type, chosen via intn, which is
// expected to behave like rand.Intn.
func Pick(t WorkoutType, intn func(n int) int) (Definition, bool) {
	defs := exercises[t]
	if len(defs) == 0 {
		return Definition{}, false
	}
	return defs[intn(len(defs))], true
}
