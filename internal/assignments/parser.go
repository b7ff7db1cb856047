package assignments

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gradehub/gradehub-api/internal/models"
)

// DescriptorFile is the fixed name of the per-assignment descriptor inside
// the tests repository.
const DescriptorFile = "assignment.yml"

// DeadlineLayout is the fixed format descriptor deadlines are written in.
const DeadlineLayout = "02-01-2006 15:04"

// descriptor mirrors the assignment.yml fields. The struct is private but
// the fields must be exported for decoding.
type descriptor struct {
	AssignmentID uint   `yaml:"assignmentid"`
	Name         string `yaml:"name"`
	Language     string `yaml:"language"`
	Deadline     string `yaml:"deadline"`
	AutoApprove  bool   `yaml:"autoapprove"`
	IsGroupLab   bool   `yaml:"IsGroupLab"`
}

// Parse walks the given file tree and decodes every assignment.yml found
// into an assignment record for the course. A single malformed descriptor
// aborts the whole parse: a partial assignment list must never be produced.
//
// The tree is abstract so callers can parse a cloned checkout (os.DirFS) or
// an in-memory fixture alike.
func Parse(fsys fs.FS, courseID uint) ([]models.Assignment, error) {
	if _, err := fs.Stat(fsys, "."); err != nil {
		return nil, err
	}

	var assignments []models.Assignment
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Base(p) != DescriptorFile {
			return nil
		}

		source, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}

		var desc descriptor
		if err := yaml.Unmarshal(source, &desc); err != nil {
			return fmt.Errorf("malformed descriptor %s: %w", p, err)
		}

		deadline, err := time.Parse(DeadlineLayout, desc.Deadline)
		if err != nil {
			return fmt.Errorf("malformed deadline in %s: %w", p, err)
		}

		assignments = append(assignments, models.Assignment{
			CourseID:    courseID,
			Name:        desc.Name,
			Language:    strings.ToLower(desc.Language),
			Deadline:    deadline.UTC().Format(time.RFC3339),
			AutoApprove: desc.AutoApprove,
			// ordering is declarative: the descriptor's own ID, not the
			// position in the walk
			Order:      desc.AssignmentID,
			IsGroupLab: desc.IsGroupLab,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
