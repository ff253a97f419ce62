package types

// Action is what the decision agent asks the ledger to do.
type Action string

const (
	ActionBuy   Action = "buy"
	ActionSell  Action = "sell"
	ActionShort Action = "short"
	ActionCover Action = "cover"
	ActionHold  Action = "hold"
)

// IsTrade reports whether the action changes a position.
func (a Action) IsTrade() bool {
	switch a {
	case ActionBuy, ActionSell, ActionShort, ActionCover:
		return true
	default:
		return false
	}
}

// Decision is one ticker's instruction for the current cycle.
type Decision struct {
	Action     Action  `json:"action" yaml:"action" validate:"required,oneof=buy sell short cover hold"`
	Quantity   float64 `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Confidence int     `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// HoldDecision is used for tickers the agent did not decide on.
func HoldDecision() Decision {
	return Decision{Action: ActionHold, Quantity: 0, Confidence: 0, Reasoning: ""}
}

// AnalystSignal is per-ticker risk data published by an analyst agent.
type AnalystSignal struct {
	CurrentPrice  float64 `json:"current_price"`
	PositionLimit float64 `json:"remaining_position_limit"`
	Reasoning     string  `json:"reasoning,omitempty"`
}

// RiskManagementAgent is the analyst key that carries current prices.
const RiskManagementAgent = "risk_management_agent"
