package logger

import "strings"

// RedactAddress masks a street address for safe logging, keeping only the
// block number prefix. "1423 Oak Street" → "14XX block". Values without a
// leading house number are fully masked.
func RedactAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	fields := strings.Fields(addr)
	num := fields[0]
	digits := 0
	for _, r := range num {
		if r < '0' || r > '9' {
			digits = 0
			break
		}
		digits++
	}
	if digits >= 3 {
		return num[:len(num)-2] + "XX block"
	}
	if digits > 0 {
		return "*** block"
	}
	return "***"
}
