package domain

type RankCounts struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third"`
}

type GameDetail struct {
	GameTitle    string     `json:"gameTitle"`
	Plays        int        `json:"plays"`
	AverageScore float64    `json:"averageScore"`
	HighestScore int        `json:"highestScore"`
	LowestScore  int        `json:"lowestScore"`
	Ranks        RankCounts `json:"ranks"`
}

type PersonalStats struct {
	TotalPlays     int          `json:"totalPlays"`
	MostPlayedGame string       `json:"mostPlayedGame"`
	TotalRankings  RankCounts   `json:"totalRankings"`
	GameDetails    []GameDetail `json:"gameDetails"`
	IsRestricted   bool         `json:"isRestricted"`
}

// RestrictedPersonalStats is returned to callers without an entitlement.
func RestrictedPersonalStats() PersonalStats {
	return PersonalStats{
		MostPlayedGame: NoGameTitle,
		GameDetails:    []GameDetail{},
		IsRestricted:   true,
	}
}

type MostPlayedGame struct {
	Title string `json:"title"`
	Plays int    `json:"plays"`
}

type PlayerDetail struct {
	PlayerName       string     `json:"playerName"`
	TotalPlays       int        `json:"totalPlays"`
	AverageScore     float64    `json:"averageScore"`
	HighestScore     int        `json:"highestScore"`
	LowestScore      int        `json:"lowestScore"`
	Ranks            RankCounts `json:"ranks"`
	TotalFirstPlaces int        `json:"totalFirstPlaces"`
}

type SelectedGameStats struct {
	GameTitle     string         `json:"gameTitle"`
	TotalPlays    int            `json:"totalPlays"`
	AverageScore  float64        `json:"averageScore"`
	HighestScore  int            `json:"highestScore"`
	LowestScore   int            `json:"lowestScore"`
	Ranks         RankCounts     `json:"ranks"`
	PlayerDetails []PlayerDetail `json:"playerDetails"`
}

type GroupStats struct {
	GroupName          string             `json:"groupName"`
	TotalPlays         int                `json:"totalPlays"`
	AvailableGames     []string           `json:"availableGames"`
	MostPlayedGame     MostPlayedGame     `json:"mostPlayedGame"`
	TotalGroupRankings RankCounts         `json:"totalGroupRankings"`
	PlayerDetails      []PlayerDetail     `json:"playerDetails"`
	SelectedGameStats  *SelectedGameStats `json:"selectedGameStats"`
	IsRestricted       bool               `json:"isRestricted"`
}

// EmptyGroupStats is the zeroed shape for a group with no records.
func EmptyGroupStats(groupName string) GroupStats {
	return GroupStats{
		GroupName:      groupName,
		AvailableGames: []string{},
		MostPlayedGame: MostPlayedGame{Title: NoGameTitle},
		PlayerDetails:  []PlayerDetail{},
	}
}

// RestrictedGroupStats is returned to callers without an entitlement. The group
// is never loaded, so the name stays empty.
func RestrictedGroupStats() GroupStats {
	s := EmptyGroupStats("")
	s.IsRestricted = true
	return s
}
