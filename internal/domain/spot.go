package domain

import "strconv"

type Spot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Level       int    `json:"level"`
	IsAvailable bool   `json:"isAvailable"`
	RatePerHour int64  `json:"ratePerHour"`
}

// IsBookableCode restricts end-user booking to the spots whose code carries
// numeric identifier 1 or 2. Operators see every spot; this rule applies only
// at the user-facing request boundary.
func IsBookableCode(code string) bool {
	digits := make([]rune, 0, len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return false
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return false
	}
	return n == 1 || n == 2
}
