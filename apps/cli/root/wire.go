package root

import (
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/apps/cli/cmd/courses"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/apps/cli/cmd/jobs"
)

func init() {
	Root().AddCommand(jobs.Command())
	Root().AddCommand(courses.Command())
}
