package constants

import "time"

const (
	AppName            = "weekdiary"
	DefaultKeyringUser = "github-token"
	DefaultConfigPath  = "~/.config/weekdiary/weekdiary.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DaysPerWeek is the number of daily records in every week
	DaysPerWeek = 7

	// NoonHour is the neutral time of day used for calendar arithmetic
	NoonHour = 12

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "weekdiary-"
	BackupFileSuffix = ".db"

	// Editor lock constants
	EditorLockfileName = "weekdiary-editor.lock"

	// GitHub contents API constants
	GitHubAPIBaseURL     = "https://api.github.com"
	GitHubAPIVersion     = "2022-11-28"
	GitHubMaxRetries     = 3
	GitHubInitialBackoff = 500 * time.Millisecond
	GitHubRequestsPerSec = 5
	GitHubRequestTimeout = 30 * time.Second

	// Environment variables
	EnvConfigPath  = "WEEKDIARY_CONFIG"
	EnvGitHubToken = "WEEKDIARY_GITHUB_TOKEN"
)

// DayNames are the weekday labels written to the week files, Monday first.
var DayNames = [DaysPerWeek]string{"月", "火", "水", "木", "金", "土", "日"}

// DefaultItems is the built-in checklist. The first entry is the weekly goal
// prompt and is never used as a per-day item.
var DefaultItems = []string{
	"今週の目標",
	"ハイニコポンをする。",
	"自分の時間をできるだけ使わない。",
	"人のことを悪く思わない。",
	"ふとした瞬間の心で人に不足せず、感謝する。",
	"毎日親が喜んでくださることを研究する。",
	"実行するときは心からする。",
	"朝起きた時にまず、親への感謝から。",
	"人に迷惑をかけない。",
	"じっとしとらん、親の思いにはまりたい、ありがたいと思って日々を通る。",
	"因縁自覚をする。",
	"毎日勉強する。",
	"字を綺麗に書く。",
	"身だしなみを整える。",
	"体幹、筋トレ、柔軟、バレエ",
	"やるべきことを終わらせてから寝る。",
}

// DefaultGoalIndex is the position of the weekly goal prompt in DefaultItems.
const DefaultGoalIndex = 0
