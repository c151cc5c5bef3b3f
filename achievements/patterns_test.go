package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartbeans/grader"
)

func sub(id, task int, content, result string) grader.Submission {
	return grader.Submission{ID: id, TaskID: task, Content: content, ResultType: result}
}

func TestHasIdenticalWrongResubmission(t *testing.T) {
	tests := []struct {
		name string
		subs []grader.Submission
		want bool
	}{
		{
			name: "same wrong source twice for one task",
			subs: []grader.Submission{
				sub(1, 3, "x", grader.ResultFailed),
				sub(2, 3, "x", grader.ResultFailed),
			},
			want: true,
		},
		{
			name: "same wrong source for different tasks",
			subs: []grader.Submission{
				sub(1, 3, "x", grader.ResultFailed),
				sub(2, 4, "x", grader.ResultFailed),
			},
			want: false,
		},
		{
			name: "different failure categories still count",
			subs: []grader.Submission{
				sub(1, 3, "x", grader.ResultCompileError),
				sub(2, 3, "x", grader.ResultTimeout),
			},
			want: true,
		},
		{
			name: "identical but one correct",
			subs: []grader.Submission{
				sub(1, 3, "x", grader.ResultFailed),
				sub(2, 3, "x", grader.ResultSuccess),
			},
			want: false,
		},
		{
			name: "interleaved by other content",
			subs: []grader.Submission{
				sub(1, 3, "b", grader.ResultFailed),
				sub(2, 4, "a", grader.ResultFailed),
				sub(3, 3, "a", grader.ResultFailed),
				sub(4, 4, "a", grader.ResultFailed),
			},
			want: true,
		},
		{name: "empty", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasIdenticalWrongResubmission(tt.subs))
		})
	}
}

func TestHasRedundantCorrectResubmission(t *testing.T) {
	assert.True(t, HasRedundantCorrectResubmission([]grader.Submission{
		sub(1, 7, "a", grader.ResultSuccess),
		sub(2, 7, "b", grader.ResultSuccess),
	}))
	assert.False(t, HasRedundantCorrectResubmission([]grader.Submission{
		sub(1, 7, "a", grader.ResultSuccess),
		sub(2, 8, "a", grader.ResultSuccess),
		sub(3, 7, "a", grader.ResultFailed),
	}))
	assert.False(t, HasRedundantCorrectResubmission(nil))
}

func TestResubmissionRulesDisagree(t *testing.T) {
	correct := []grader.Submission{
		sub(1, 5, "a", grader.ResultSuccess),
		sub(2, 5, "b", grader.ResultSuccess),
	}
	assert.True(t, HasRedundantCorrectResubmission(correct))
	assert.False(t, HasIdenticalWrongResubmission(correct))
}

func TestContainsLoop(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`int main() { for (int i = 0; i < 3; i++) {} }`, true},
		{`while (x) { x--; }`, true},
		{`printf("for while");`, false},
		{`/* for */ return 0;`, false},
		{"// while\nreturn 0;", false},
		{`int before = 1; /* a
for loop */ return before;`, false},
		{`printf("\"for\""); return 0;`, false},
		{`int forward = 1; int awhile = 2;`, false},
		{`x = "/* not a comment */"; for (;;) {}`, true},
		{"// for demo\nint x=1;", false},
		{`for(int i=0;i<5;i++){}`, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsLoop(tt.src), tt.src)
	}
}

func TestStripSource(t *testing.T) {
	assert.Equal(t, `puts(""); `, StripSource(`puts("for"); // while`))
	assert.Equal(t, "a   b", StripSource("a /* x */ b"))
}
