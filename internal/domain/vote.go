package domain

import "fmt"

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func ParseVoteDirection(s string) (VoteDirection, error) {
	switch VoteDirection(s) {
	case VoteUp, VoteDown:
		return VoteDirection(s), nil
	}
	return "", fmt.Errorf("unknown vote direction %q", s)
}

// CounterField is the product counter the direction increments.
func (d VoteDirection) CounterField() string {
	if d == VoteDown {
		return "downVote"
	}
	return "upVote"
}

// SetField is the user array that records the voted product ids.
func (d VoteDirection) SetField() string {
	if d == VoteDown {
		return "downVotes"
	}
	return "upVotes"
}
