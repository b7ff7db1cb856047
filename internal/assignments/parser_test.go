package assignments

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseBuildsOneAssignmentPerDescriptor(t *testing.T) {
	fsys := fstest.MapFS{
		"lab1/assignment.yml": &fstest.MapFile{Data: []byte(
			"assignmentid: 1\nname: \"Lab 1\"\nlanguage: \"Go\"\ndeadline: \"01-09-2024 23:59\"\nautoapprove: true\nIsGroupLab: false\n",
		)},
		"lab2/assignment.yml": &fstest.MapFile{Data: []byte(
			"assignmentid: 2\nname: \"Lab 2\"\nlanguage: \"Java\"\ndeadline: \"15-10-2024 12:00\"\nautoapprove: false\nIsGroupLab: true\n",
		)},
		"lab2/README.md": &fstest.MapFile{Data: []byte("not a descriptor")},
	}

	assignments, err := Parse(fsys, 7)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	first := assignments[0]
	require.Equal(t, uint(7), first.CourseID)
	require.Equal(t, "Lab 1", first.Name)
	require.Equal(t, "go", first.Language, "language should be lowercased")
	require.Equal(t, uint(1), first.Order, "order must equal the declared assignment id")
	require.True(t, first.AutoApprove)
	require.False(t, first.IsGroupLab)

	deadline, err := first.DeadlineTime()
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 9, 1, 23, 59, 0, 0, time.UTC), deadline)

	second := assignments[1]
	require.Equal(t, "java", second.Language)
	require.Equal(t, uint(2), second.Order)
	require.True(t, second.IsGroupLab)
}

func TestParseMalformedDeadlineAbortsWholeParse(t *testing.T) {
	fsys := fstest.MapFS{
		"lab1/assignment.yml": &fstest.MapFile{Data: []byte(
			"assignmentid: 1\nname: \"Lab 1\"\nlanguage: \"go\"\ndeadline: \"01-09-2024 23:59\"\n",
		)},
		"lab2/assignment.yml": &fstest.MapFile{Data: []byte(
			"assignmentid: 2\nname: \"Lab 2\"\nlanguage: \"go\"\ndeadline: \"September 1st\"\n",
		)},
	}

	assignments, err := Parse(fsys, 1)
	require.Error(t, err)
	require.Nil(t, assignments, "a malformed descriptor must not produce partial results")
}

func TestParseMalformedYAMLAbortsWholeParse(t *testing.T) {
	fsys := fstest.MapFS{
		"lab1/assignment.yml": &fstest.MapFile{Data: []byte("{{not yaml")},
	}

	assignments, err := Parse(fsys, 1)
	require.Error(t, err)
	require.Nil(t, assignments)
}

func TestParseEmptyTreeYieldsNoAssignments(t *testing.T) {
	assignments, err := Parse(fstest.MapFS{"README.md": &fstest.MapFile{Data: []byte("hi")}}, 1)
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestFixDeadlineNormalizesLegacyShapes(t *testing.T) {
	require.Equal(t, "2024-09-01T23:59:00Z", FixDeadline("01-09-2024 23:59"))
	require.Equal(t, "2024-09-01T23:59:00Z", FixDeadline("2024-09-01T23:59:00Z"), "canonical values pass through")
	require.Equal(t, "not a date", FixDeadline("not a date"), "unrecognized values are returned unchanged")
}
