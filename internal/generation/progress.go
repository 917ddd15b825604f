package generation

const (
	StepAnalyzing  = "Analyzing prompt with AI..."
	StepEnhancing  = "Enhancing prompt with AI..."
	StepGenerating = "Generating images..."
	StepSaving     = "Saving to gallery..."
	StepComplete   = "Complete!"

	TotalSteps = 4
)

// Progress is a snapshot of how far a generation has come.
type Progress struct {
	Step       string `json:"step"`
	Percent    int    `json:"percent"`
	StepIndex  int    `json:"step_index"`
	TotalSteps int    `json:"total_steps"`
}

var progressByStep = map[string]Progress{
	StepAnalyzing:  {Step: StepAnalyzing, Percent: 5, StepIndex: 0},
	StepEnhancing:  {Step: StepEnhancing, Percent: 15, StepIndex: 1},
	StepGenerating: {Step: StepGenerating, Percent: 60, StepIndex: 2},
	StepSaving:     {Step: StepSaving, Percent: 80, StepIndex: 3},
	StepComplete:   {Step: StepComplete, Percent: 100, StepIndex: 4},
}

// ProgressFor returns the snapshot reported when step begins.
func ProgressFor(step string) Progress {
	p := progressByStep[step]
	p.TotalSteps = TotalSteps
	return p
}
