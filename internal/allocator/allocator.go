package allocator

import (
	"errors"
	"fmt"
	"math"

	"exam-allocator/internal/models"
)

var (
	ErrInsufficientData = errors.New("no exam centers loaded")
	ErrUnknownMode      = errors.New("unknown assignment mode")
)

// Mode selects how students are paired with centers.
type Mode string

const (
	ModeNearest    Mode = "nearest"
	ModeRoundRobin Mode = "round-robin"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNearest, "":
		return ModeNearest, nil
	case ModeRoundRobin:
		return ModeRoundRobin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Distance returns the absolute difference between two pincodes,
// saturating at math.MaxInt when the difference does not fit in an int.
func Distance(a, b int) int {
	if a < b {
		a, b = b, a
	}
	d := a - b
	if d < 0 {
		return math.MaxInt
	}
	return d
}

// Allocate pairs every student with the center whose pincode is closest.
// When several centers are equally close the first one in centers wins.
func Allocate(students []models.Student, centers []models.Center) ([]models.Assignment, error) {
	if len(centers) == 0 {
		return nil, ErrInsufficientData
	}

	results := make([]models.Assignment, len(students))
	for idx, s := range students {
		nearestIdx := 0
		minDist := Distance(s.PostalCode, centers[0].PostalCode)

		for cIdx := 1; cIdx < len(centers); cIdx++ {
			d := Distance(s.PostalCode, centers[cIdx].PostalCode)
			if d < minDist {
				minDist = d
				nearestIdx = cIdx
			}
		}

		results[idx] = models.Assignment{
			Student:  s,
			Center:   centers[nearestIdx],
			Distance: minDist,
		}
	}

	return results, nil
}

// RoundRobin deals students out to centers in list order, ignoring distance.
func RoundRobin(students []models.Student, centers []models.Center) ([]models.Assignment, error) {
	if len(centers) == 0 {
		return nil, ErrInsufficientData
	}

	results := make([]models.Assignment, len(students))
	for idx, s := range students {
		c := centers[idx%len(centers)]
		results[idx] = models.Assignment{
			Student:  s,
			Center:   c,
			Distance: Distance(s.PostalCode, c.PostalCode),
		}
	}
	return results, nil
}

func Assign(mode Mode, students []models.Student, centers []models.Center) ([]models.Assignment, error) {
	switch mode {
	case ModeNearest:
		return Allocate(students, centers)
	case ModeRoundRobin:
		return RoundRobin(students, centers)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Summary counts the students sent to each center, in order of first use.
func Summary(assignments []models.Assignment) []models.CenterLoad {
	loads := []models.CenterLoad{}
	index := make(map[models.Center]int)

	for _, a := range assignments {
		i, ok := index[a.Center]
		if !ok {
			i = len(loads)
			index[a.Center] = i
			loads = append(loads, models.CenterLoad{Center: a.Center})
		}
		loads[i].Students++
		if a.Distance > loads[i].MaxDistance {
			loads[i].MaxDistance = a.Distance
		}
	}
	return loads
}
