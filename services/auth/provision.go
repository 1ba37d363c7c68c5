package auth

import (
	"context"
	"time"

	recordRepo "classroom/database/repository/record"
	"classroom/models"
	"classroom/utils"

	"go.uber.org/zap"
)

// ProfileProvisioner ensures a durable profile record exists for a verified
// identity. Called once per successful authentication, but safe to call
// repeatedly: it never duplicates records and never erases course
// memberships accumulated between calls.
type ProfileProvisioner struct {
	Store  recordRepo.Store
	Logger *zap.Logger
}

// EnsureProfile reads users/<identity id> and creates it from defaults when
// missing. When present, provider-supplied name/email/photo are considered
// authoritative and overwrite the stored values, while the course map is
// always preserved.
func (p *ProfileProvisioner) EnsureProfile(ctx context.Context, identity *models.Identity, defaults models.ProfileDefaults) (*models.UserProfile, error) {
	key := utils.ProfileKeyPrefix + identity.ID

	var profile models.UserProfile
	err := p.Store.ReadRecord(ctx, key, &profile)
	switch {
	case err == recordRepo.ErrNotFound:
		profile = models.UserProfile{
			Name:    firstNonEmpty(identity.DisplayName, defaults.Name),
			Email:   firstNonEmpty(identity.Email, defaults.Email),
			Photo:   firstNonEmpty(identity.PhotoURL, defaults.Photo),
			Courses: map[string]models.CourseMembership{},
		}
		p.Logger.Info("Creating profile record",
			zap.String("uid", identity.ID),
			zap.String("provider", string(identity.Provider)))
	case err != nil:
		return nil, err
	default:
		if v := identity.DisplayName; v != "" {
			profile.Name = v
		}
		if v := identity.Email; v != "" {
			profile.Email = v
		}
		if v := identity.PhotoURL; v != "" {
			profile.Photo = v
		}
		if profile.Courses == nil {
			profile.Courses = map[string]models.CourseMembership{}
		}
	}

	if err := p.Store.WriteRecord(ctx, key, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// JoinCourse records a course membership on the profile. Used by the course
// screens; kept here so all profile writes share one merge path.
func (p *ProfileProvisioner) JoinCourse(ctx context.Context, uid, courseID string, role models.MemberRole) error {
	key := utils.ProfileKeyPrefix + uid
	var profile models.UserProfile
	if err := p.Store.ReadRecord(ctx, key, &profile); err != nil {
		return err
	}
	if profile.Courses == nil {
		profile.Courses = map[string]models.CourseMembership{}
	}
	if _, ok := profile.Courses[courseID]; ok {
		return nil
	}
	profile.Courses[courseID] = models.CourseMembership{Role: role, JoinedAt: time.Now()}
	return p.Store.WriteRecord(ctx, key, &profile)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
