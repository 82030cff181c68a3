package config

import "fmt"

// Required returns an error naming the first empty value. Pairs are
// (value, env name).
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == "" {
			return fmt.Errorf("missing required env %s", pairs[i+1])
		}
	}
	return nil
}
