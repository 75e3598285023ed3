package game

import (
	"encoding/json"
	"time"
)

type CreateRoomRequest struct {
	PlayerName string       `json:"player_name"`
	Settings   RoomSettings `json:"settings"`
}

type JoinRoomRequest struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

type RejoinRoomRequest struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

type SelectWordRequest struct {
	WordIndex int `json:"word_index"`
}

type DrawStrokeRequest struct {
	Stroke json.RawMessage `json:"stroke"`
}

type SubmitDrawingRequest struct {
	Drawing string `json:"drawing"`
}

type SubmitGuessRequest struct {
	Text string `json:"text"`
}

type CastVoteRequest struct {
	DrawerID string `json:"drawer_id"`
}

type SendChatRequest struct {
	Text string `json:"text"`
}

type SendReactionRequest struct {
	Emoji string `json:"emoji"`
}

type RoomJoinedResponse struct {
	Room     RoomSnapshot `json:"room"`
	PlayerID string       `json:"player_id"`
}

type PlayerJoinedResponse struct {
	Player Player       `json:"player"`
	Room   RoomSnapshot `json:"room"`
}

type PlayerLeftResponse struct {
	PlayerID   string       `json:"player_id"`
	PlayerName string       `json:"player_name"`
	Room       RoomSnapshot `json:"room"`
}

type CountdownResponse struct {
	Seconds int `json:"seconds"`
}

// RoundStartResponse 选词之前不透露词的长度和提示
type RoundStartResponse struct {
	Round       int      `json:"round"`
	TotalRounds int      `json:"total_rounds"`
	DrawerID    string   `json:"drawer_id"`
	DrawerIDs   []string `json:"drawer_ids"`
}

type WordOptionsResponse struct {
	Words []string `json:"words"`
}

type DrawingPhaseResponse struct {
	DrawTime   int    `json:"draw_time"`
	WordLength int    `json:"word_length"`
	WordHint   string `json:"word_hint"`
}

type WordSelectedResponse struct {
	Word string `json:"word"`
}

type DrawStrokeResponse struct {
	PlayerID string          `json:"player_id"`
	Stroke   json.RawMessage `json:"stroke"`
}

type RevealPhaseResponse struct {
	Drawing    string `json:"drawing"`
	RevealTime int    `json:"reveal_time"`
	WordHint   string `json:"word_hint"`
}

type CorrectGuessResponse struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	Points        int     `json:"points"`
	TotalGuessers int     `json:"total_guessers"`
	Streak        int     `json:"streak"`
	Multiplier    float64 `json:"multiplier"`
}

type CloseGuessResponse struct {
	PlayerID string `json:"player_id"`
	Guess    string `json:"guess"`
}

type ChatMessage struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
	System     bool   `json:"system"`
}

func NewChatMessage(player *Player, text string) ChatMessage {
	return ChatMessage{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
	}
}

func NewSystemMessage(text string) ChatMessage {
	return ChatMessage{
		PlayerID:   "system",
		PlayerName: "System",
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
		System:     true,
	}
}

type ReactionResponse struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Emoji      string `json:"emoji"`
	Timestamp  int64  `json:"timestamp"`
}

type RoundEndResponse struct {
	Word   string       `json:"word"`
	Scores []RoundScore `json:"scores"`
}

type GameOverResponse struct {
	FinalScores []FinalScore `json:"final_scores"`
}

type VotingDrawing struct {
	DrawerID   string `json:"drawer_id"`
	DrawerName string `json:"drawer_name"`
	Word       string `json:"word"`
	Drawing    string `json:"drawing"`
}

type VotingStartResponse struct {
	Drawings   []VotingDrawing `json:"drawings"`
	VotingTime int             `json:"voting_time"`
}

type VoteReceivedResponse struct {
	VoterID      string `json:"voter_id"`
	VoterName    string `json:"voter_name"`
	TotalVotes   int    `json:"total_votes"`
	TotalPlayers int    `json:"total_players"`
}

type VotingResult struct {
	DrawerID   string `json:"drawer_id"`
	DrawerName string `json:"drawer_name"`
	Word       string `json:"word"`
	Votes      int    `json:"votes"`
	IsWinner   bool   `json:"is_winner"`
}

type VotingResultsResponse struct {
	Results     []VotingResult `json:"results"`
	WinnerID    string         `json:"winner_id"`
	BonusPoints int            `json:"bonus_points"`
}

type TelephoneTurnResponse struct {
	PlayerID         string `json:"player_id"`
	PlayerName       string `json:"player_name"`
	TimeLimit        int    `json:"time_limit"`
	RemainingPlayers int    `json:"remaining_players"`
}

// 传话提示类型
const (
	PROMPT_WORD    = "word"
	PROMPT_GUESS   = "guess"
	PROMPT_DRAWING = "drawing"
)

type TelephonePromptResponse struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

type TelephoneChainItem struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name"`
}

type TelephoneRevealResponse struct {
	OriginalWord string               `json:"original_word"`
	Chain        []TelephoneChainItem `json:"chain"`
	RevealTime   int                  `json:"reveal_time"`
}
