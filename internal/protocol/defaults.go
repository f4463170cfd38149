// Package protocol holds the seed content for guided micro-interventions:
// the default discharge protocols, the ROJO sensory-discharge checklist and
// the partner support templates. The storage layer seeds these on first run;
// after that the database copies are authoritative and user-editable.
package protocol

// DefaultRojoChecklist is the sensory-overload discharge checklist.
var DefaultRojoChecklist = []string{
	"Tapones / silencio",
	"Bajar luz / evitar luz blanca",
	"Ventilar / evitar olores",
	"Ropa cómoda",
	"A/C si necesito ventanas cerradas",
	"Movimiento (caminar en círculos)",
	"Música elegida",
	"Repetición calmante (tarareo / frase / teclado)",
}

// DefaultSteps maps protocol name to its ordered steps. Seeding preserves
// map iteration independence by walking DefaultOrder.
var DefaultSteps = map[string][]string{
	"Activación / enojo": {
		"60 segundos: respiración lenta",
		"Escribe: \"Qué hecho ocurrió\" (sin interpretación)",
		"Escribe: \"Qué necesito ahora\" (silencio / salida / descarga)",
		"Si estás con gente: \"Necesito un minuto, regreso luego\"",
	},
	"Post-social drenado": {
		"Registrar costo 0–10",
		"Activar descarga 20–40 min",
		"Bloquear estímulos (audio/redes) por X tiempo",
	},
	"Congelamiento por ambigüedad": {
		"Timer 2 min",
		"Primer paso físico",
		"Solo dos opciones (A/B)",
	},
	"Sensorial": {
		"Tapones / silencio",
		"Bajar luz / evitar luz blanca",
		"Ventilar / evitar olores",
		"Ropa cómoda",
	},
}

// DefaultOrder fixes the on-screen ordering of the seeded protocols.
var DefaultOrder = []string{
	"Activación / enojo",
	"Post-social drenado",
	"Congelamiento por ambigüedad",
	"Sensorial",
}

// Partner support copy: canned requests the user can send and concrete
// actions a partner can take.
var (
	DefaultRequests = []string{
		"Necesito silencio un rato, no es contigo.",
		"¿Puedes encargarte de la cena hoy?",
		"Recuérdame comer algo en una hora.",
		"Necesito que decidas tú, no puedo elegir ahora.",
	}
	DefaultActions = []string{
		"Bajar luces y ruido sin preguntar.",
		"Ofrecer agua o comida simple.",
		"No pedir decisiones durante la descarga.",
		"Avisar si pasan más de 40 minutos.",
	}
)
