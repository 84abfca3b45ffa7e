package pointer

// To returns a pointer to a copy of the provided value
func To[T any](value T) *T {
	return &value
}

// Copy returns a pointer to a copy of the pointed to value, or nil
func Copy[T any](value *T) *T {
	if value == nil {
		return nil
	}
	return To(*value)
}

// Uint64 returns a pointer to the provided uint64 value
func Uint64(value uint64) *uint64 {
	return &value
}

// Uint64Copy returns a pointer that's a copy of the provided value
func Uint64Copy(value *uint64) *uint64 {
	return Copy(value)
}
