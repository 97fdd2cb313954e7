package screening

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	questionsHeader  = "### 📌 Technical Interview Questions"
	questionsNote    = "_These questions are for recruiter evaluation. You are not required to answer them at this stage._"
	confidenceHeader = "### 📊 Confidence Assessment"
)

// FormatReply combines both completions into the message shown to the candidate.
func FormatReply(questions, confidence string) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n\n%s", questionsHeader, questionsNote, questions, confidenceHeader, confidence)
}

type Level string

const (
	LevelHigh     Level = "High"
	LevelModerate Level = "Moderate"
	LevelLow      Level = "Low"
)

type Confidence struct {
	Level  Level
	Reason string
}

var (
	confidenceLevelPattern  = regexp.MustCompile(`(?im)^[ \t]*Confidence Level:[ \t]*(High|Moderate|Low)[ \t]*$`)
	confidenceReasonPattern = regexp.MustCompile(`(?im)^[ \t]*Reason:[ \t]*(\S.*?)[ \t]*$`)
)

// ParseConfidence checks that text carries a "Confidence Level:" line with one
// of the three levels and a non-empty "Reason:" line.
func ParseConfidence(text string) (*Confidence, error) {
	level := confidenceLevelPattern.FindStringSubmatch(text)
	if level == nil {
		return nil, errors.New("missing or invalid confidence level")
	}
	reason := confidenceReasonPattern.FindStringSubmatch(text)
	if reason == nil {
		return nil, errors.New("missing confidence reason")
	}
	var lvl Level
	switch strings.ToLower(level[1]) {
	case "high":
		lvl = LevelHigh
	case "moderate":
		lvl = LevelModerate
	default:
		lvl = LevelLow
	}
	return &Confidence{Level: lvl, Reason: reason[1]}, nil
}
