package swapcore

// State is a step of the approve-then-swap state machine.
type State string

const (
	StateStart            State = "Start"
	StateCheckAllowance   State = "CheckAllowance"
	StateSkipApprove      State = "SkipApprove"
	StateSubmitApprove    State = "SubmitApprove"
	StateApprovePending   State = "ApprovePending"
	StateApproveMined     State = "ApproveMined"
	StateApproveReverted  State = "ApproveReverted"
	StateApproveTimeout   State = "ApproveTimeout"
	StateReCheckAllowance State = "ReCheckAllowance"
	StateSubmitSwap       State = "SubmitSwap"
	StateSwapPending      State = "SwapPending"
	StateSwapMined        State = "SwapMined"
	StateSwapReverted     State = "SwapReverted"
	StateSwapTimeout      State = "SwapTimeout"
	StateDone             State = "Done"
	StateFailed           State = "Failed"
)

func (s State) String() string { return string(s) }

// phase groups the states of one submit-and-confirm leg.
type phase struct {
	label    string
	submit   State
	pending  State
	mined    State
	reverted State
	timeout  State
}

var (
	approvePhase = phase{"approve", StateSubmitApprove, StateApprovePending, StateApproveMined, StateApproveReverted, StateApproveTimeout}
	swapPhase    = phase{"swap", StateSubmitSwap, StateSwapPending, StateSwapMined, StateSwapReverted, StateSwapTimeout}
)
