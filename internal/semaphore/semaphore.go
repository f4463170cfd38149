package semaphore

import "brujula/internal/model"

// Advisory copy per result. Static, no parameters.
var advice = map[model.Semaphore]string{
	model.SemaphoreGreen:  "Sigue. No optimices.",
	model.SemaphoreYellow: "Reduce estímulo. Arranca pequeño.",
	model.SemaphoreRed:    "Descarga primero. Luego decide.",
}

// Clamp forces a score into [0,10]. Out-of-range inputs are a caller
// contract violation; on the UI input path we clamp instead of failing.
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Evaluate maps the four scored inputs to the semaphore state. Tiers are
// checked in fixed priority order and each RED condition is individually
// sufficient: the classifier is biased toward over-flagging overload.
// The YELLOW sensory/social bands are the closed intervals [6,7]; values >= 8
// are already RED. Anger (ira) is deliberately not an input.
func Evaluate(energy, sensory, social, ambiguity int) model.Semaphore {
	energy = Clamp(energy)
	sensory = Clamp(sensory)
	social = Clamp(social)
	ambiguity = Clamp(ambiguity)

	if energy <= 2 || sensory >= 8 || social >= 8 || ambiguity >= 9 {
		return model.SemaphoreRed
	}
	if energy <= 4 || (sensory >= 6 && sensory <= 7) || (social >= 6 && social <= 7) {
		return model.SemaphoreYellow
	}
	return model.SemaphoreGreen
}

// EvaluateCheckIn classifies a full check-in snapshot. The anger score is
// part of the record but is excluded from classification.
func EvaluateCheckIn(c model.CheckIn) model.Semaphore {
	return Evaluate(c.Energy, c.Sensory, c.Social, c.Ambiguity)
}

// Advice returns the fixed advisory string for a result.
func Advice(r model.Semaphore) string {
	return advice[r]
}
