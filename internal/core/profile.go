package core

import "github.com/kolejker/OsaltServer/internal/proto"

// Profile holds the externally computed presence and ranking values of a
// user. The server treats them as opaque.
type Profile struct {
	Timezone    int8    `mapstructure:"timezone" yaml:"timezone"`
	CountryID   uint8   `mapstructure:"country_id" yaml:"country_id"`
	Permissions uint8   `mapstructure:"permissions" yaml:"permissions"`
	Longitude   float32 `mapstructure:"longitude" yaml:"longitude"`
	Latitude    float32 `mapstructure:"latitude" yaml:"latitude"`
	Rank        int32   `mapstructure:"rank" yaml:"rank"`
	RankedScore int64   `mapstructure:"ranked_score" yaml:"ranked_score"`
	Accuracy    float64 `mapstructure:"accuracy" yaml:"accuracy"`
	Playcount   int32   `mapstructure:"playcount" yaml:"playcount"`
	TotalScore  int64   `mapstructure:"total_score" yaml:"total_score"`
	PP          int32   `mapstructure:"pp" yaml:"pp"`
}

// DefaultProfile returns the values served when no ranking source exists.
func DefaultProfile() Profile {
	return Profile{
		Timezone:    5,
		CountryID:   94,
		Permissions: 4,
		Rank:        2100,
		RankedScore: 5000000,
		Accuracy:    97.54,
		Playcount:   123,
		TotalScore:  8000000,
		PP:          2100,
	}
}

// ProfileSource resolves the profile of a user.
type ProfileSource interface {
	Profile(userID int32) Profile
}

// StaticProfiles serves the same profile for every user.
type StaticProfiles struct {
	Value Profile
}

// Profile returns p.Value.
func (p StaticProfiles) Profile(int32) Profile {
	return p.Value
}

func presenceOf(s *Session, p Profile) proto.Presence {
	return proto.Presence{
		UserID:      s.UserID,
		Username:    s.Username,
		Timezone:    p.Timezone,
		CountryID:   p.CountryID,
		Permissions: p.Permissions,
		Mode:        uint8(s.State().Mode),
		Longitude:   p.Longitude,
		Latitude:    p.Latitude,
		Rank:        p.Rank,
	}
}

func statsOf(s *Session, p Profile) proto.Stats {
	st := s.State()
	return proto.Stats{
		UserID:      s.UserID,
		Status:      uint8(st.Status),
		StatusText:  st.StatusText,
		BeatmapMD5:  st.BeatmapMD5,
		Mods:        st.Mods,
		Mode:        uint8(st.Mode),
		BeatmapID:   st.BeatmapID,
		RankedScore: p.RankedScore,
		Accuracy:    p.Accuracy,
		Playcount:   p.Playcount,
		TotalScore:  p.TotalScore,
		Rank:        p.Rank,
		PP:          p.PP,
	}
}
