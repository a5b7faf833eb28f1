package models

import "github.com/google/uuid"

// NewDesignID returns a fresh random design identifier.
func NewDesignID() string {
	return "design_" + uuid.NewString()
}

// NewScenarioID returns a fresh random scenario identifier.
func NewScenarioID() string {
	return "scenario_" + uuid.NewString()
}
