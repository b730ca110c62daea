package dataset

// FloorNames maps human floor labels to the filename tokens used in object
// names. Labels without an entry pass through unchanged.
type FloorNames struct {
	toToken map[string]string
	toLabel map[string]string
}

func NewFloorNames(tokens map[string]string) FloorNames {
	f := FloorNames{toToken: map[string]string{}, toLabel: map[string]string{}}
	for label, token := range tokens {
		f.toToken[label] = token
		f.toLabel[token] = label
	}
	return f
}

func (f FloorNames) Token(label string) string {
	if t, ok := f.toToken[label]; ok {
		return t
	}
	return label
}

func (f FloorNames) Label(token string) string {
	if l, ok := f.toLabel[token]; ok {
		return l
	}
	return token
}
