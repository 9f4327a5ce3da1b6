package profile

import "fmt"

// Visibility controls which profile fields other users may see. The flags are
// advisory on the client; the backend filters server-side responses.
type Visibility struct {
	ShowEmail  bool
	ShowBio    bool
	ShowSkills bool
}

// Profile is a user's identity and preference record. SkillLevels is keyed by
// sport label ("climbing", "cycling", ...) with free-form level values.
type Profile struct {
	ID          string
	FullName    string
	Bio         string
	Email       string
	AvatarURL   string
	Visibility  Visibility
	SkillLevels map[string]string
}

func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.FullName == "" {
		return fmt.Errorf("profile full name is required")
	}

	return nil
}

// Clone returns a deep copy so callers cannot mutate a repository's map.
func (p Profile) Clone() Profile {
	copied := p
	if p.SkillLevels != nil {
		copied.SkillLevels = make(map[string]string, len(p.SkillLevels))
		for sport, level := range p.SkillLevels {
			copied.SkillLevels[sport] = level
		}
	}
	return copied
}
