package telemetry

import "testing"

func TestLifetimeTrackerObserve(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 0, 0, 80)
	lt.Register(2, 30, 1, 50)

	lt.Observe(NewMealEvent(10, 1, 100, 20, 0, 0))
	lt.Observe(NewMealEvent(12, 1, 101, 15, 0, 0))
	lt.Observe(NewPathFailureEvent(13, 1, 4, 4))
	lt.Observe(NewConceptionEvent(14, 1, 5, 50, 0, 0))
	lt.Observe(NewBirthEvent(30, 2, 1, 0, 0))
	lt.Observe(NewMealEvent(31, 99, 102, 20, 0, 0)) // unknown creature
	lt.RecordMove(1)
	lt.RecordMove(1)
	lt.UpdateCalories(1, 95)
	lt.UpdateCalories(1, 60)

	s := lt.Get(1)
	if s.Meals != 2 || s.CaloriesEaten != 35 {
		t.Errorf("meals = %d / %d, want 2 / 35", s.Meals, s.CaloriesEaten)
	}
	if s.PathFailures != 1 || s.Conceptions != 1 || s.Children != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.Distance != 2 || s.PeakCalories != 95 {
		t.Errorf("distance %d peak %d, want 2 and 95", s.Distance, s.PeakCalories)
	}

	child := lt.Remove(2)
	if child == nil || child.ParentID != 1 || child.Age(50) != 20 {
		t.Errorf("child = %+v", child)
	}
	if lt.Count() != 1 {
		t.Errorf("Count = %d, want 1", lt.Count())
	}
}
