package compensation

// Preview evaluates in-progress form values with the same derivation used by
// Service.Set. It never touches storage.
func Preview(t Template) (Breakdown, error) {
	if err := ValidateTemplate(t); err != nil {
		return Breakdown{}, err
	}
	return Derive(t), nil
}
