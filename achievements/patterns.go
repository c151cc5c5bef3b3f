package achievements

import (
	"regexp"
	"sort"

	"smartbeans/grader"
)

// HasIdenticalWrongResubmission reports whether two incorrect submissions
// for the same task carry byte-identical source text.
func HasIdenticalWrongResubmission(subs []grader.Submission) bool {
	var wrong []grader.Submission
	for _, s := range subs {
		if !s.Correct() {
			wrong = append(wrong, s)
		}
	}

	sort.Slice(wrong, func(i, j int) bool {
		if wrong[i].Content != wrong[j].Content {
			return wrong[i].Content < wrong[j].Content
		}
		if wrong[i].TaskID != wrong[j].TaskID {
			return wrong[i].TaskID < wrong[j].TaskID
		}
		return wrong[i].ID < wrong[j].ID
	})

	for i := 1; i < len(wrong); i++ {
		if wrong[i].Content == wrong[i-1].Content && wrong[i].TaskID == wrong[i-1].TaskID {
			return true
		}
	}
	return false
}

// HasRedundantCorrectResubmission reports whether a task was solved by more
// than one correct submission.
func HasRedundantCorrectResubmission(subs []grader.Submission) bool {
	var correct []grader.Submission
	for _, s := range subs {
		if s.Correct() {
			correct = append(correct, s)
		}
	}

	sort.Slice(correct, func(i, j int) bool {
		if correct[i].TaskID != correct[j].TaskID {
			return correct[i].TaskID < correct[j].TaskID
		}
		if correct[i].Content != correct[j].Content {
			return correct[i].Content < correct[j].Content
		}
		return correct[i].ID < correct[j].ID
	})

	for i := 1; i < len(correct); i++ {
		if correct[i].TaskID == correct[i-1].TaskID {
			return true
		}
	}
	return false
}

var (
	stringLiteralRe = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe   = regexp.MustCompile(`//[^\n]*`)
	loopKeywordRe   = regexp.MustCompile(`\b(?:for|while)\b`)
)

// StripSource removes string literals, then block comments, then line
// comments from C-like source text.
func StripSource(src string) string {
	src = stringLiteralRe.ReplaceAllString(src, `""`)
	src = blockCommentRe.ReplaceAllString(src, " ")
	return lineCommentRe.ReplaceAllString(src, "")
}

// ContainsLoop reports whether src uses a for or while loop outside of
// strings and comments.
func ContainsLoop(src string) bool {
	return loopKeywordRe.MatchString(StripSource(src))
}
