package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/service"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/gatewayhttp"
)

// Gateway query endpoints. Each one is a POST against the shared gateway host;
// the query_name parameter selects the stored query.
const (
	pathResolveSchool   = "/query?query_name=get_school_by_email"
	pathInsertSubject   = "/query?query_name=insert_subject"
	pathStudentByEmail  = "/query?query_name=get_student_by_email"
	pathAssignSubject   = "/query?query_name=assign_subject_to_student"
	pathTeacherRelation = "/query?query_name=insert_subject_teacher"
	pathInsertPlanner   = "/insert?query_name=insert_lesson_planner_payload"
)

const defaultStudentLookupSchoolID = 3

// Config holds the gateway adapter settings.
type Config struct {
	// StudentLookupSchoolID scopes student-by-email lookups; the directory
	// serves several schools and this deployment belongs to one.
	StudentLookupSchoolID int
}

// Client implements the saga's school gateway and planner store over the
// relational gateway's query endpoints.
type Client struct {
	http                  *gatewayhttp.Client
	studentLookupSchoolID int
	logger                *zap.Logger
}

// New constructs a gateway Client.
func New(httpClient *gatewayhttp.Client, cfg Config, logger *zap.Logger) *Client {
	if httpClient == nil {
		panic("gateway http client is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	schoolID := cfg.StudentLookupSchoolID
	if schoolID == 0 {
		schoolID = defaultStudentLookupSchoolID
	}
	return &Client{http: httpClient, studentLookupSchoolID: schoolID, logger: logger}
}

type schoolRow struct {
	SchoolID any `json:"school_id"`
}

func (c *Client) ResolveSchoolID(ctx context.Context, tenantEmail string) (string, error) {
	var rows []schoolRow
	if err := c.http.PostJSON(ctx, pathResolveSchool, map[string]string{"email": tenantEmail}, &rows); err != nil {
		return "", fmt.Errorf("resolve school for %s: %w", tenantEmail, err)
	}
	if len(rows) == 0 {
		return "", service.ErrSchoolNotFound
	}
	id := idString(rows[0].SchoolID)
	if id == "" {
		return "", service.ErrSchoolNotFound
	}
	return id, nil
}

type insertSubjectResponse struct {
	InsertedSubjectID any `json:"inserted_subject_id"`
}

func (c *Client) RegisterSubject(ctx context.Context, reg service.SubjectRegistration) (string, error) {
	payload := map[string]any{
		"name":      reg.Name,
		"grade":     reg.Grade,
		"section":   reg.Section,
		"school_id": numberOrString(reg.SchoolID),
		"period":    reg.Period,
	}

	var resp insertSubjectResponse
	if err := c.http.PostJSON(ctx, pathInsertSubject, payload, &resp); err != nil {
		return "", fmt.Errorf("insert subject %q: %w", reg.Name, err)
	}
	return idString(resp.InsertedSubjectID), nil
}

type studentRow struct {
	StudentID any `json:"student_id"`
}

func (c *Client) LookupStudentID(ctx context.Context, email string) (string, error) {
	payload := map[string]any{
		"email":     email,
		"school_id": c.studentLookupSchoolID,
	}

	var rows []studentRow
	if err := c.http.PostJSON(ctx, pathStudentByEmail, payload, &rows); err != nil {
		return "", fmt.Errorf("lookup student %s: %w", email, err)
	}
	if len(rows) == 0 {
		return "", service.ErrStudentNotFound
	}
	id := idString(rows[0].StudentID)
	if id == "" {
		return "", service.ErrStudentNotFound
	}
	return id, nil
}

type assignResponse struct {
	Status string `json:"status"`
}

func (c *Client) AssignSubject(ctx context.Context, studentID, subjectID string) (bool, error) {
	payload := map[string]any{
		"student_id":        studentID,
		"subject_id":        subjectID,
		"assigned_level_id": "",
		"is_homeroom":       "False",
		"school_year_id":    "",
	}

	var resp assignResponse
	if err := c.http.PostJSON(ctx, pathAssignSubject, payload, &resp); err != nil {
		return false, fmt.Errorf("assign subject %s to student %s: %w", subjectID, studentID, err)
	}
	return resp.Status == "assigned", nil
}

func (c *Client) RegisterTeacherRelation(ctx context.Context, subjectID, teacherID string) error {
	payload := map[string]any{
		"subject_id":     subjectID,
		"teacher_id":     teacherID,
		"role_id":        "",
		"school_year":    "",
		"school_year_id": "",
	}

	if err := c.http.PostJSON(ctx, pathTeacherRelation, payload, nil); err != nil {
		return fmt.Errorf("insert subject-teacher relation: %w", err)
	}
	return nil
}

func (c *Client) InsertLessonPlanner(ctx context.Context, lessonPayload map[string]any) error {
	var resp map[string]any
	if err := c.http.PostJSON(ctx, pathInsertPlanner, map[string]any{"lesson_planner": lessonPayload}, &resp); err != nil {
		return fmt.Errorf("insert lesson planner: %w", err)
	}
	// The gateway sometimes acks with 200 and an error in the body.
	if v, ok := resp["error"]; ok && truthy(v) {
		return fmt.Errorf("insert lesson planner: gateway reported %v", v)
	}
	return nil
}

// idString normalizes the gateway's loosely typed id columns to strings.
func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// numberOrString sends numeric-looking ids back to the gateway as numbers,
// matching the column types its stored queries expect.
func numberOrString(s string) any {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return json.Number(s)
	}
	return s
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

// Ensure interface compliance.
var (
	_ service.SchoolGateway = (*Client)(nil)
	_ service.PlannerStore  = (*Client)(nil)
)
