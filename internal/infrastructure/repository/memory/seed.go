package memory

import (
	"time"

	"github.com/yangyang7755/activityhub/internal/domain/activity"
	"github.com/yangyang7755/activityhub/internal/domain/club"
	"github.com/yangyang7755/activityhub/internal/domain/profile"
)

// Demo fixtures substituted whenever the backend is unreachable or returns
// no rows. IDs are stable so saved lists and join records survive a switch
// between demo and live data.
const (
	ActivityIDWestwayClimb = "westway-womens-climb"
	ActivityIDSundayRide   = "sunday-morning-social-ride"
	ActivityIDPeakHike     = "peak-district-hike"

	ClubIDWestway  = "westway-climbing-centre"
	ClubIDRichmond = "richmond-cycling-club"

	DemoUserID = "demo-user"
)

func SeedActivities() []activity.Activity {
	return []activity.Activity{
		{
			ID:                  ActivityIDWestwayClimb,
			Title:               "Westway women's+ climbing morning",
			Type:                activity.TypeClimbing,
			StartsAt:            time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC),
			Location:            "Westway Climbing Centre, London",
			OrganizerID:         "coach-holly",
			OrganizerName:       "Coach Holly Peristiani",
			MaxParticipants:     12,
			CurrentParticipants: 8,
			Difficulty:          "Intermediate",
			ClubID:              ClubIDWestway,
		},
		{
			ID:                  ActivityIDSundayRide,
			Title:               "Sunday Morning Social Ride",
			Type:                activity.TypeCycling,
			StartsAt:            time.Date(2026, 9, 7, 8, 30, 0, 0, time.UTC),
			Location:            "Richmond Park, London",
			OrganizerID:         "rcc-rides",
			OrganizerName:       "Richmond Cycling Club",
			MaxParticipants:     15,
			CurrentParticipants: 6,
			Difficulty:          "Beginner",
			ClubID:              ClubIDRichmond,
		},
		{
			ID:                  ActivityIDPeakHike,
			Title:               "Peak District Weekend Hike",
			Type:                activity.TypeHiking,
			StartsAt:            time.Date(2026, 9, 13, 9, 0, 0, 0, time.UTC),
			Location:            "Edale, Peak District",
			OrganizerID:         "sam-trails",
			OrganizerName:       "Sam Okafor",
			MaxParticipants:     10,
			CurrentParticipants: 4,
			Difficulty:          "Intermediate",
		},
	}
}

func SeedClubs() []club.Club {
	return []club.Club{
		{ID: ClubIDWestway, Name: "Westway Climbing Centre", Sport: "climbing", Location: "London", LogoURL: "https://cdn.activityhub.app/clubs/westway.png"},
		{ID: ClubIDRichmond, Name: "Richmond Cycling Club", Sport: "cycling", Location: "Richmond", LogoURL: "https://cdn.activityhub.app/clubs/rcc.png"},
	}
}

func SeedMemberships() []club.Membership {
	return []club.Membership{
		{
			UserID:      "coach-holly",
			ClubID:      ClubIDWestway,
			Role:        club.RoleManager,
			Status:      club.StatusActive,
			JoinedAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			ClubName:    "Westway Climbing Centre",
			ClubLogoURL: "https://cdn.activityhub.app/clubs/westway.png",
		},
		{
			UserID:      "rcc-rides",
			ClubID:      ClubIDRichmond,
			Role:        club.RoleAdmin,
			Status:      club.StatusActive,
			JoinedAt:    time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC),
			ClubName:    "Richmond Cycling Club",
			ClubLogoURL: "https://cdn.activityhub.app/clubs/rcc.png",
		},
	}
}

func SeedProfiles() []profile.Profile {
	return []profile.Profile{
		{
			ID:        DemoUserID,
			FullName:  "Maddie Wei",
			Bio:       "Finding my people one climb at a time.",
			Email:     "maddie@example.com",
			AvatarURL: "https://cdn.activityhub.app/avatars/maddie.png",
			Visibility: profile.Visibility{
				ShowEmail:  false,
				ShowBio:    true,
				ShowSkills: true,
			},
			SkillLevels: map[string]string{
				"climbing": "intermediate",
				"cycling":  "beginner",
			},
		},
		{
			ID:        "coach-holly",
			FullName:  "Coach Holly Peristiani",
			Bio:       "Routesetter and women's+ session coach at Westway.",
			AvatarURL: "https://cdn.activityhub.app/avatars/holly.png",
			Visibility: profile.Visibility{
				ShowBio:    true,
				ShowSkills: true,
			},
			SkillLevels: map[string]string{"climbing": "advanced"},
		},
		{
			ID:        "sam-trails",
			FullName:  "Sam Okafor",
			Bio:       "Weekend hiker, weekday dreamer.",
			AvatarURL: "https://cdn.activityhub.app/avatars/sam.png",
			Visibility: profile.Visibility{
				ShowBio: true,
			},
			SkillLevels: map[string]string{"hiking": "advanced"},
		},
	}
}

// SeedCurrentProfile is the demo current-user profile used until the
// snapshot store has a persisted record.
func SeedCurrentProfile() profile.Profile {
	return SeedProfiles()[0]
}
