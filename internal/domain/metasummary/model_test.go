package metasummary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRankOrdering(t *testing.T) {
	ordered := []Verdict{
		VerdictVeryPervasive,
		VerdictPervasive,
		VerdictModerate,
		VerdictUserFriendly,
		VerdictVeryUserFriendly,
		VerdictUnknown,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, SeverityRank(ordered[i-1]), SeverityRank(ordered[i]),
			"%s must rank above %s", ordered[i-1], ordered[i])
	}
}

func TestSeverityRankUnrecognised(t *testing.T) {
	assert.Equal(t, 0, SeverityRank(Verdict("something_else")))
	assert.Equal(t, 0, SeverityRank(Verdict("")))
	assert.Equal(t, SeverityRank(VerdictUnknown), SeverityRank(Verdict("bogus")))
}
