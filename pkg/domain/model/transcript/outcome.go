package transcript

// Outcome is the parsed form of an analysis provider response: either Structured or
// Unstructured.
type Outcome interface {
	Summary() string
	Attributes() *Attributes
	outcome()
}

// Structured is a response that parsed as the expected JSON object.
type Structured struct {
	Text  string
	Attrs *Attributes
}

func (x *Structured) Summary() string { return x.Text }

func (x *Structured) Attributes() *Attributes {
	if x.Attrs == nil {
		return NewAttributes()
	}
	return x.Attrs
}

func (x *Structured) outcome() {}

// Unstructured keeps the raw provider text when structured extraction failed.
type Unstructured struct {
	RawText string
}

func (x *Unstructured) Summary() string { return x.RawText }

func (x *Unstructured) Attributes() *Attributes { return NewAttributes() }

func (x *Unstructured) outcome() {}

// ToAnalysis builds the stored analysis record for an outcome.
func ToAnalysis(o Outcome, promptUsed, model string) *Analysis {
	return &Analysis{
		Summary:    o.Summary(),
		Attributes: o.Attributes(),
		PromptUsed: promptUsed,
		Model:      model,
	}
}
