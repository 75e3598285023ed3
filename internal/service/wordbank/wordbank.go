package wordbank

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var defaultWords = []string{
	"cat", "dog", "sun", "moon", "tree", "house", "car", "fish", "bird", "boat",
	"ball", "book", "cake", "door", "eye", "fire", "gift", "hand", "ice", "jump",
	"key", "lamp", "mouse", "nose", "orange", "pig", "queen", "rain", "star", "table",
	"airplane", "basketball", "butterfly", "computer", "dinosaur", "elephant",
	"fireworks", "giraffe", "hamburger", "iceberg", "jellyfish", "kangaroo",
	"lightning", "mushroom", "newspaper", "octopus", "penguin", "rainbow",
	"sandwich", "telescope", "umbrella", "volcano", "waterfall", "xylophone",
	"astronaut", "camouflage", "flashlight", "kaleidoscope", "labyrinth", "parachute",
	"quicksand", "silhouette", "trampoline", "orchestra",
}

// WordBank 是进程内共享的词库，最近用过的词在用尽之前不会再次出现
type WordBank struct {
	mu    sync.Mutex
	words []string
	used  map[string]struct{}
}

func New(words []string) *WordBank {
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || strings.HasPrefix(w, "#") || slices.Contains(cleaned, w) {
			continue
		}
		cleaned = append(cleaned, w)
	}

	return &WordBank{
		words: cleaned,
		used:  make(map[string]struct{}),
	}
}

func NewDefault() *WordBank {
	return New(defaultWords)
}

// Load 从每行一个词的文件中读取词库，path 为空时使用内置词库
func Load(path string) (*WordBank, error) {
	if path == "" {
		return NewDefault(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list %s: %w", path, err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}

	wb := New(words)
	if wb.Size() == 0 {
		return nil, fmt.Errorf("word list %s is empty", path)
	}

	zap.L().Info(
		"词库加载完成",
		zap.String("path", path),
		zap.Int("count", wb.Size()),
	)

	return wb, nil
}

func (wb *WordBank) Size() int {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	return len(wb.words)
}

// GetWordOptions 返回 min(count, 可用数量) 个不同的词，可用词不足时清空已用记录
func (wb *WordBank) GetWordOptions(count int) []string {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if count <= 0 {
		return nil
	}

	available := wb.available()
	if len(available) < count {
		zap.L().Debug("可用词不足，重置已用词记录")
		clear(wb.used)
		available = slices.Clone(wb.words)
	}

	rand.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	return available[:min(count, len(available))]
}

func (wb *WordBank) available() []string {
	out := make([]string, 0, len(wb.words))
	for _, w := range wb.words {
		if _, ok := wb.used[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}

func (wb *WordBank) MarkUsed(word string) {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	wb.used[strings.ToLower(strings.TrimSpace(word))] = struct{}{}
}
