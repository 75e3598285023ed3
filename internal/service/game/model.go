package game

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
)

// 游戏模式
const (
	MODE_CLASSIC       = "CLASSIC"
	MODE_COLLABORATIVE = "COLLABORATIVE"
	MODE_TELEPHONE     = "TELEPHONE"
)

// 房间号字符集，去掉了 0/O、1/I 等容易看错的字符
const (
	ROOM_ID_CHARS  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ROOM_ID_LENGTH = 6
)

func GenRoomID() string {
	var sb strings.Builder
	sb.Grow(ROOM_ID_LENGTH)

	for range ROOM_ID_LENGTH {
		sb.WriteByte(ROOM_ID_CHARS[rand.IntN(len(ROOM_ID_CHARS))])
	}

	return sb.String()
}

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SessionID string `json:"-"`

	Score         int  `json:"score"`
	Ready         bool `json:"ready"`
	Connected     bool `json:"connected"`
	CurrentStreak int  `json:"current_streak"`
	MaxStreak     int  `json:"max_streak"`
}

func NewPlayer(name, sessionID string) *Player {
	return &Player{
		ID:        ShortID(),
		Name:      name,
		SessionID: sessionID,
		Connected: true,
	}
}

func (p *Player) AddScore(points int) {
	p.Score += points
}

func (p *Player) IncrementStreak() {
	p.CurrentStreak++
	if p.CurrentStreak > p.MaxStreak {
		p.MaxStreak = p.CurrentStreak
	}
}

func (p *Player) ResetStreak() {
	p.CurrentStreak = 0
}

type RoomSettings struct {
	MaxPlayers         int    `json:"max_players" mapstructure:"max_players"`
	Rounds             int    `json:"rounds" mapstructure:"rounds"`
	DrawTime           int    `json:"draw_time" mapstructure:"draw_time"`
	RevealTime         int    `json:"reveal_time" mapstructure:"reveal_time"`
	GameMode           string `json:"game_mode" mapstructure:"game_mode"`
	CollaborativeCount int    `json:"collaborative_count" mapstructure:"collaborative_count"`
}

func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		MaxPlayers:         12,
		Rounds:             3,
		DrawTime:           80,
		RevealTime:         10,
		GameMode:           MODE_CLASSIC,
		CollaborativeCount: 2,
	}
}

// Normalize 把零值补成默认值并把其余字段裁剪到合法范围
func (s RoomSettings) Normalize() RoomSettings {
	def := DefaultRoomSettings()

	if s.MaxPlayers == 0 {
		s.MaxPlayers = def.MaxPlayers
	}
	if s.Rounds == 0 {
		s.Rounds = def.Rounds
	}
	if s.DrawTime == 0 {
		s.DrawTime = def.DrawTime
	}
	if s.RevealTime == 0 {
		s.RevealTime = def.RevealTime
	}
	if s.CollaborativeCount == 0 {
		s.CollaborativeCount = def.CollaborativeCount
	}

	switch strings.ToUpper(s.GameMode) {
	case MODE_COLLABORATIVE:
		s.GameMode = MODE_COLLABORATIVE
	case MODE_TELEPHONE:
		s.GameMode = MODE_TELEPHONE
	default:
		s.GameMode = MODE_CLASSIC
	}

	s.MaxPlayers = clamp(s.MaxPlayers, 2, 12)
	s.Rounds = clamp(s.Rounds, 1, 10)
	s.DrawTime = clamp(s.DrawTime, 30, 180)
	s.RevealTime = clamp(s.RevealTime, 5, 60)
	s.CollaborativeCount = clamp(s.CollaborativeCount, 2, 4)

	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// DrawingEntry 是一局中提交的画作，游戏结束后参与投票
type DrawingEntry struct {
	Round      int    `json:"round"`
	DrawerID   string `json:"drawer_id"`
	DrawerName string `json:"drawer_name"`
	Word       string `json:"word"`
	Drawing    string `json:"drawing"`
	Votes      int    `json:"votes"`
}

// 传话链条目类型
const (
	ENTRY_DRAW  = "DRAW"
	ENTRY_GUESS = "GUESS"
)

type TelephoneEntry struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type TelephoneChain struct {
	OriginalWord string
	Queue        []string
	Cursor       int
	Entries      []TelephoneEntry
}

func NewTelephoneChain(word string, sessionIDs []string) *TelephoneChain {
	queue := slices.Clone(sessionIDs)
	rand.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})

	return &TelephoneChain{
		OriginalWord: word,
		Queue:        queue,
	}
}

func (c *TelephoneChain) IsComplete() bool {
	return c.Cursor >= len(c.Queue)
}

func (c *TelephoneChain) CurrentSessionID() string {
	if c.IsComplete() {
		return ""
	}
	return c.Queue[c.Cursor]
}

// NextEntryType 条目类型从 DRAW 开始严格交替
func (c *TelephoneChain) NextEntryType() string {
	if len(c.Entries)%2 == 0 {
		return ENTRY_DRAW
	}
	return ENTRY_GUESS
}

// CurrentPrompt 是上一条目的内容，第一条目的提示为原词
func (c *TelephoneChain) CurrentPrompt() string {
	if len(c.Entries) == 0 {
		return c.OriginalWord
	}
	return c.Entries[len(c.Entries)-1].Content
}

func (c *TelephoneChain) AddEntry(player *Player, entryType, content string) {
	c.Entries = append(c.Entries, TelephoneEntry{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Type:       entryType,
		Content:    content,
		CreatedAt:  time.Now(),
	})
	c.Cursor++
}

// Skip 跳过已经离开房间的玩家
func (c *TelephoneChain) Skip() {
	c.Cursor++
}

type GameState struct {
	Phase        Phase
	CurrentRound int
	TotalRounds  int

	// 仅在选词和绘画阶段非空
	CurrentDrawerSessionIDs []string
	CurrentDrawerIDs        []string
	// 本局的画手，一直保留到下一局开始，用于结算和猜词资格判断
	RoundDrawerSessionIDs []string
	RoundDrawerIDs        []string

	CurrentWord     string
	WordOptions     []string
	Drawing         string
	CorrectGuessers map[string]struct{}
	PhaseStartTime  time.Time
	DrawerIndex     int

	RoundDrawings []*DrawingEntry
	VotedPlayers  map[string]struct{}
	VotingClosed  bool

	Telephone *TelephoneChain
}

func NewGameState(totalRounds int) *GameState {
	return &GameState{
		Phase:           PHASE_LOBBY,
		TotalRounds:     totalRounds,
		DrawerIndex:     -1,
		CorrectGuessers: make(map[string]struct{}),
		VotedPlayers:    make(map[string]struct{}),
		PhaseStartTime:  time.Now(),
	}
}

// StartNewRound 清理上一局的数据并记录新的画手
func (gs *GameState) StartNewRound(drawers []*Player, options []string) {
	gs.CurrentRound++
	gs.CurrentWord = ""
	gs.Drawing = ""
	gs.WordOptions = options
	gs.CorrectGuessers = make(map[string]struct{})

	gs.CurrentDrawerSessionIDs = gs.CurrentDrawerSessionIDs[:0]
	gs.CurrentDrawerIDs = gs.CurrentDrawerIDs[:0]
	for _, d := range drawers {
		gs.CurrentDrawerSessionIDs = append(gs.CurrentDrawerSessionIDs, d.SessionID)
		gs.CurrentDrawerIDs = append(gs.CurrentDrawerIDs, d.ID)
	}
	gs.RoundDrawerSessionIDs = slices.Clone(gs.CurrentDrawerSessionIDs)
	gs.RoundDrawerIDs = slices.Clone(gs.CurrentDrawerIDs)
}

func (gs *GameState) IsCurrentDrawer(sessionID string) bool {
	return slices.Contains(gs.CurrentDrawerSessionIDs, sessionID)
}

func (gs *GameState) IsRoundDrawer(sessionID string) bool {
	return slices.Contains(gs.RoundDrawerSessionIDs, sessionID)
}

func (gs *GameState) HasGuessedCorrectly(playerID string) bool {
	_, ok := gs.CorrectGuessers[playerID]
	return ok
}

// Room 是一个独立的游戏会话。除 ID 外的所有字段都受 mu 保护
type Room struct {
	mu sync.Mutex

	ID            string
	HostSessionID string
	Settings      RoomSettings
	CreatedAt     time.Time
	LastActivity  time.Time

	Players map[string]*Player
	// 按加入顺序排列的 session ID，用于轮换画手
	order []string

	State *GameState
}

func NewRoom(id string, settings RoomSettings) *Room {
	settings = settings.Normalize()
	now := time.Now()

	return &Room{
		ID:           id,
		Settings:     settings,
		CreatedAt:    now,
		LastActivity: now,
		Players:      make(map[string]*Player),
		State:        NewGameState(settings.Rounds),
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

func (r *Room) Touch() {
	r.LastActivity = time.Now()
}

func (r *Room) IsInactive(threshold time.Duration) bool {
	return time.Since(r.LastActivity) > threshold
}

// AddPlayer 第一个加入的玩家成为房主
func (r *Room) AddPlayer(player *Player) {
	r.Players[player.SessionID] = player
	r.order = append(r.order, player.SessionID)

	if r.HostSessionID == "" {
		r.HostSessionID = player.SessionID
	}
	r.Touch()
}

// RemovePlayer 移除玩家，房主离开时由剩余玩家中最早加入的一位接任
func (r *Room) RemovePlayer(sessionID string) *Player {
	player, ok := r.Players[sessionID]
	if !ok {
		return nil
	}

	delete(r.Players, sessionID)

	idx := slices.Index(r.order, sessionID)
	if idx >= 0 {
		r.order = slices.Delete(r.order, idx, idx+1)
		// 保持轮换位置，使下一位画手不被跳过
		if idx <= r.State.DrawerIndex {
			r.State.DrawerIndex--
		}
	}

	if r.HostSessionID == sessionID {
		r.HostSessionID = ""
		if len(r.order) > 0 {
			r.HostSessionID = r.order[0]
		}
	}

	r.Touch()
	return player
}

func (r *Room) GetPlayer(sessionID string) *Player {
	return r.Players[sessionID]
}

func (r *Room) GetPlayerByID(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) IsHost(sessionID string) bool {
	return r.HostSessionID == sessionID
}

func (r *Room) PlayerCount() int {
	return len(r.Players)
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.Settings.MaxPlayers
}

func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// SessionIDs 按加入顺序返回
func (r *Room) SessionIDs() []string {
	return slices.Clone(r.order)
}

// PlayerList 按加入顺序返回
func (r *Room) PlayerList() []*Player {
	players := make([]*Player, 0, len(r.order))
	for _, sid := range r.order {
		players = append(players, r.Players[sid])
	}
	return players
}

// AllPlayersReady 至少两人且全部准备
func (r *Room) AllPlayersReady() bool {
	if len(r.Players) < 2 {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// NextDrawer 推进轮换下标并返回对应的玩家
func (r *Room) NextDrawer() *Player {
	if len(r.order) == 0 {
		return nil
	}

	r.State.DrawerIndex = (r.State.DrawerIndex + 1) % len(r.order)
	if r.State.DrawerIndex < 0 {
		r.State.DrawerIndex = 0
	}

	return r.Players[r.order[r.State.DrawerIndex]]
}

// RebindSession 将玩家迁移到新的 session，房主、画手和传话队列一并迁移
func (r *Room) RebindSession(oldSessionID, newSessionID string) *Player {
	player, ok := r.Players[oldSessionID]
	if !ok {
		return nil
	}

	delete(r.Players, oldSessionID)
	player.SessionID = newSessionID
	player.Connected = true
	r.Players[newSessionID] = player

	replace := func(ids []string) {
		for i, id := range ids {
			if id == oldSessionID {
				ids[i] = newSessionID
			}
		}
	}

	replace(r.order)
	replace(r.State.CurrentDrawerSessionIDs)
	replace(r.State.RoundDrawerSessionIDs)
	if r.State.Telephone != nil {
		replace(r.State.Telephone.Queue)
	}

	if r.HostSessionID == oldSessionID {
		r.HostSessionID = newSessionID
	}

	r.Touch()
	return player
}

// ResetForNewGame 清空分数与准备状态，回到大厅
func (r *Room) ResetForNewGame() {
	for _, p := range r.Players {
		p.Score = 0
		p.Ready = false
		p.CurrentStreak = 0
		p.MaxStreak = 0
	}
	r.State = NewGameState(r.Settings.Rounds)
	r.Touch()
}

type RoomSnapshot struct {
	ID           string       `json:"id"`
	HostID       string       `json:"host_id"`
	Settings     RoomSettings `json:"settings"`
	Players      []Player     `json:"players"`
	Phase        Phase        `json:"phase"`
	CurrentRound int          `json:"current_round"`
	TotalRounds  int          `json:"total_rounds"`
	DrawerIDs    []string     `json:"drawer_ids"`
	AllReady     bool         `json:"all_ready"`
}

// Snapshot 复制一份可以安全跨协程传递的房间状态
func (r *Room) Snapshot() RoomSnapshot {
	players := make([]Player, 0, len(r.order))
	for _, p := range r.PlayerList() {
		players = append(players, *p)
	}

	var hostID string
	if host := r.Players[r.HostSessionID]; host != nil {
		hostID = host.ID
	}

	return RoomSnapshot{
		ID:           r.ID,
		HostID:       hostID,
		Settings:     r.Settings,
		Players:      players,
		Phase:        r.State.Phase,
		CurrentRound: r.State.CurrentRound,
		TotalRounds:  r.State.TotalRounds,
		DrawerIDs:    slices.Clone(r.State.CurrentDrawerIDs),
		AllReady:     r.AllPlayersReady(),
	}
}
