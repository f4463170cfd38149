package semaphore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brujula/internal/model"
)

func TestEvaluateRedTiers(t *testing.T) {
	cases := []struct {
		name                               string
		energy, sensory, social, ambiguity int
	}{
		{"exhausted", 2, 3, 1, 2},
		{"energy floor", 0, 0, 0, 0},
		{"sensory overload", 7, 8, 0, 0},
		{"social overload", 7, 0, 8, 0},
		{"ambiguity freeze", 7, 0, 0, 9},
		{"everything maxed", 0, 10, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.energy, tc.sensory, tc.social, tc.ambiguity)
			assert.Equal(t, model.SemaphoreRed, got)
		})
	}
}

func TestEvaluateYellowTiers(t *testing.T) {
	cases := []struct {
		name                               string
		energy, sensory, social, ambiguity int
	}{
		{"low energy", 4, 0, 0, 0},
		{"low energy at 3", 3, 0, 0, 0},
		{"sensory band low", 6, 6, 2, 1},
		{"sensory band high", 6, 7, 2, 1},
		{"social band low", 9, 0, 6, 0},
		{"social band high", 9, 0, 7, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.energy, tc.sensory, tc.social, tc.ambiguity)
			assert.Equal(t, model.SemaphoreYellow, got)
		})
	}
}

func TestEvaluateGreen(t *testing.T) {
	assert.Equal(t, model.SemaphoreGreen, Evaluate(8, 3, 2, 1))
	assert.Equal(t, model.SemaphoreGreen, Evaluate(5, 0, 0, 0))
	assert.Equal(t, model.SemaphoreGreen, Evaluate(10, 5, 5, 8))
}

// Boundary behavior must match exactly: 7 stays in the YELLOW band, 8 is RED.
func TestEvaluateBoundaries(t *testing.T) {
	assert.Equal(t, model.SemaphoreYellow, Evaluate(9, 7, 0, 0))
	assert.Equal(t, model.SemaphoreRed, Evaluate(9, 8, 0, 0))
	assert.Equal(t, model.SemaphoreYellow, Evaluate(9, 0, 7, 0))
	assert.Equal(t, model.SemaphoreRed, Evaluate(9, 0, 8, 0))
	assert.Equal(t, model.SemaphoreYellow, Evaluate(4, 0, 0, 0))
	assert.Equal(t, model.SemaphoreGreen, Evaluate(5, 0, 0, 0))
	// Ambiguity has no YELLOW band: 8 with everything else calm stays GREEN.
	assert.Equal(t, model.SemaphoreGreen, Evaluate(9, 0, 0, 8))
	assert.Equal(t, model.SemaphoreRed, Evaluate(9, 0, 0, 9))
}

func TestEvaluateClampsOutOfRange(t *testing.T) {
	// -5 clamps to 0 (RED via energy), 15 clamps to 10 (RED via sensory).
	assert.Equal(t, model.SemaphoreRed, Evaluate(-5, 0, 0, 0))
	assert.Equal(t, model.SemaphoreRed, Evaluate(9, 15, 0, 0))
	assert.Equal(t, model.SemaphoreGreen, Evaluate(15, 0, 0, 0))
}

// Varying anger across its whole range never changes the classification.
func TestAngerHasNoEffect(t *testing.T) {
	snapshots := []model.CheckIn{
		{Energy: 2, Sensory: 3, Social: 1, Ambiguity: 2},
		{Energy: 6, Sensory: 7, Social: 2, Ambiguity: 1},
		{Energy: 8, Sensory: 3, Social: 2, Ambiguity: 1},
	}
	for _, snap := range snapshots {
		base := EvaluateCheckIn(snap)
		for anger := 0; anger <= 10; anger++ {
			snap.Anger = anger
			assert.Equal(t, base, EvaluateCheckIn(snap))
		}
	}
}

func TestAdviceCopy(t *testing.T) {
	assert.Equal(t, "Sigue. No optimices.", Advice(model.SemaphoreGreen))
	assert.Equal(t, "Reduce estímulo. Arranca pequeño.", Advice(model.SemaphoreYellow))
	assert.Equal(t, "Descarga primero. Luego decide.", Advice(model.SemaphoreRed))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-1))
	assert.Equal(t, 0, Clamp(0))
	assert.Equal(t, 10, Clamp(10))
	assert.Equal(t, 10, Clamp(11))
	assert.Equal(t, 6, Clamp(6))
}
