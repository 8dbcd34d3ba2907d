package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	lib := DefaultLibrary()

	for _, key := range []string{"bi", "fa", "io5", "pi", "tb"} {
		assert.Equal(t, "react-icons/"+key, Normalize(lib, key))
	}
	for _, path := range []string{"react-icons/bi", "React-Icons/fa", "@scope/react-icons/md", "react-icons"} {
		assert.Equal(t, path, Normalize(lib, path))
	}
	assert.Equal(t, "react-icons/bi", Normalize(lib, "/bi"))
	assert.Equal(t, "react-icons/bi", Normalize(lib, "  bi "))
}

func TestMatchesConvention(t *testing.T) {
	lib := DefaultLibrary()

	assert.True(t, MatchesConvention(lib, "react-icons/bi"))
	assert.True(t, MatchesConvention(lib, "fa"))
	assert.True(t, MatchesConvention(lib, "MD"))
	assert.True(t, MatchesConvention(lib, "gi/extra"))
	assert.False(t, MatchesConvention(lib, "react"))
	assert.False(t, MatchesConvention(lib, "lodash"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "bi", Key("react-icons/bi"))
	assert.Equal(t, "io5", Key("react-icons/io5"))
	assert.Equal(t, "bi", Key("react-icons/B!i "))
	assert.Equal(t, "my-pack_2", Key("vendor/My-Pack_2"))
	assert.Equal(t, "bi", Key("bi"))
	assert.Equal(t, "", Key("react-icons/"))
}
