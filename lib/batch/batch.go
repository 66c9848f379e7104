package batch

import "fmt"

// ByCount groups [in] into consecutive chunks of at most [size] elements, preserving order, and passes each chunk to [yield].
func ByCount[T any](in []T, size int, yield func(chunk []T) error) error {
	if size <= 0 {
		return fmt.Errorf("batch size must be a positive number, current value: %d", size)
	}

	for start := 0; start < len(in); start += size {
		end := min(start+size, len(in))
		if err := yield(in[start:end]); err != nil {
			return err
		}
	}

	return nil
}
