// models/profile.go
package models

import (
	"fmt"
	"time"
)

// MemberRole is the role a user holds inside a course.
type MemberRole string

const (
	RoleStudent MemberRole = "student"
	RoleTeacher MemberRole = "teacher"
)

// AttendanceStatus is the closed set of per-session attendance marks used by
// the attendance screens.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

// ParseAttendanceStatus maps a wire string onto the closed status set.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch AttendanceStatus(s) {
	case AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused:
		return AttendanceStatus(s), nil
	}
	return "", fmt.Errorf("unknown attendance status %q", s)
}

// CourseMembership records a user's membership in one course.
type CourseMembership struct {
	Role     MemberRole `json:"role" bson:"role"`
	JoinedAt time.Time  `json:"joinedAt" bson:"joinedAt"`
}

// UserProfile is the durable per-user record stored at users/<identity id>.
// It outlives the session; Courses accumulates across sign-ins and must never
// be clobbered by provisioning.
type UserProfile struct {
	Name    string                      `json:"name" bson:"name"`
	Email   string                      `json:"email" bson:"email"`
	Photo   string                      `json:"photo" bson:"photo"`
	Courses map[string]CourseMembership `json:"courses" bson:"courses"`
}

// ProfileDefaults seeds a profile the first time an identity signs in.
type ProfileDefaults struct {
	Name  string
	Email string
	Photo string
}
