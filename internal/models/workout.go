package models

import "time"

type ExerciseSet struct {
	Number int     `json:"number"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type Exercise struct {
	Name string        `json:"name"`
	Sets []ExerciseSet `json:"sets"`
}

type DayWorkout struct {
	DayName   string     `json:"day_name"`
	Exercises []Exercise `json:"exercises"`
}

type UserDocument struct {
	UserSub        string       `json:"user_sub"`
	LastModified   time.Time    `json:"last_modified"`
	CurrentTrainer string       `json:"current_trainer"`
	WorkoutPlan    []DayWorkout `json:"workout_plan"`
}

var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// NewUserDocument returns a fresh document with an empty plan for every weekday.
func NewUserDocument(sub string) *UserDocument {
	plan := make([]DayWorkout, 0, len(weekdays))
	for _, day := range weekdays {
		plan = append(plan, DayWorkout{DayName: day, Exercises: []Exercise{}})
	}
	return &UserDocument{
		UserSub:      sub,
		LastModified: time.Now().UTC(),
		WorkoutPlan:  plan,
	}
}

type LiftRecord struct {
	Name   string    `json:"name"`
	Weight []float64 `json:"weight"`
}

type RecordsDocument struct {
	UserSub      string       `json:"user_sub"`
	LastModified time.Time    `json:"last_modified"`
	RecordsList  []LiftRecord `json:"records_list"`
}

func NewRecordsDocument(sub string) *RecordsDocument {
	return &RecordsDocument{
		UserSub:      sub,
		LastModified: time.Now().UTC(),
		RecordsList: []LiftRecord{
			{Name: "Bench Press", Weight: []float64{}},
			{Name: "Deadlift", Weight: []float64{}},
			{Name: "Squats", Weight: []float64{}},
		},
	}
}

type TrainerDocument struct {
	UserSub      string    `json:"user_sub"`
	LastModified time.Time `json:"last_modified"`
	Students     []string  `json:"students"`
}

func NewTrainerDocument(sub string) *TrainerDocument {
	return &TrainerDocument{
		UserSub:      sub,
		LastModified: time.Now().UTC(),
		Students:     []string{},
	}
}
