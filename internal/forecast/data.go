package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NeuralNetwork describes the model shown on the processing card.
// Nothing is computed from it.
type NeuralNetwork struct {
	Layers              []int    `json:"layers"`
	ActivationFunctions []string `json:"activation_functions"`
	TrainingEpochs      int      `json:"training_epochs"`
	Accuracy            float64  `json:"accuracy"`
	Loss                float64  `json:"loss"`
}

// Network is the fixed descriptor rendered by the UI.
var Network = NeuralNetwork{
	Layers:              []int{4, 6, 8, 6, 2},
	ActivationFunctions: []string{"ReLU", "Sigmoid", "Tanh", "ReLU", "Linear"},
	TrainingEpochs:      1000,
	Accuracy:            0.94,
	Loss:                0.06,
}

// Summary renders "4 → 6 → 8 → 6 → 2 layers | Accuracy: 94.0%".
func (n NeuralNetwork) Summary() string {
	parts := make([]string, len(n.Layers))
	for i, l := range n.Layers {
		parts[i] = strconv.Itoa(l)
	}
	return fmt.Sprintf("%s layers | Accuracy: %.1f%%", strings.Join(parts, " → "), n.Accuracy*100)
}

// Factors is the ordered candidate list; a prediction always takes a prefix of it.
var Factors = []string{
	"Market volatility patterns",
	"Historical platinum performance",
	"Economic indicators",
	"Temporal seasonality",
	"Regulatory changes",
	"Supply chain disruptions",
	"Demand fluctuations",
	"Currency exchange rates",
}

// DeathReasons holds the 25 causes a prediction can pick from.
var DeathReasons = []string{
	"Last employee finally fired for using Comic Sans in presentations",
	"CEO ate the last horse in the office",
	"GDPR fine exceeds market cap by 47,000%",
	`Security audit reveals admin password was "password123"`,
	"Final PHP developer defected to a functional programming cult",
	"Customer data found for sale on Craigslist for £3.50",
	"Server room flooded with tears of former employees",
	"Regulatory compliance team consisted of one Magic 8-Ball",
	"Last functional code comment was from 2019",
	"HR department replaced by ChatGPT trained on toxic management practices",
	"PCI DSS auditor died of laughter during inspection",
	"Office rent paid in exposure and good vibes",
	`Critical system backup was stored on a USB stick labeled "NOT PORN"`,
	"Last competent employee escaped through the air conditioning vents",
	"Company credit card declined at McDonald's",
	"Ed Sheeran personally sued them for £61.5 million",
	"Database corrupted by aggressive pigeon nesting in server rack",
	`Final investor meeting ended with "Have you tried turning it off and leaving it off?"`,
	"Legacy codebase achieved sentience and filed for emancipation",
	"Customer support team outsourced to a magic fortune cookie factory",
	"SSL certificate expired in 2017, nobody noticed until now",
	`Company motto changed from "Innovation" to "Please send help"`,
	"Last security update was a Windows XP service pack",
	"Office Wi-Fi password was company's banking details",
	"Emergency fund consisted of loose change from couch cushions",
}

// ProcessingSteps are the labels walked through while a run is in progress.
var ProcessingSteps = []string{
	"Analyzing temporal patterns...",
	"Processing market indicators...",
	"Calculating probability distributions...",
	"Generating final prediction...",
	"Validating neural network outputs...",
	"Applying ensemble methods...",
	"Cross-validating results...",
	"Finalizing prediction model...",
}

// Bounds of the predicted date range, midnight UTC.
var (
	RangeStart = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	RangeEnd   = time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
)

const (
	minFactors    = 4
	factorsSpread = 4

	minConfidence    = 80.0
	confidenceSpread = 20.0
)
