package ulid

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

/* ========================================================================
 * ULID Generator - ULID 生成器
 * ========================================================================
 * 职责: 为每次验证生成可排序的唯一 ID（日志、指标、响应中关联同一次验证）
 * 特点:
 *   - 字典序排序（按时间戳）
 *   - 固定 26 字符长度
 *   - 实例级熵源，不使用全局单例
 * ======================================================================== */

// Generator ULID 生成器，并发安全
type Generator struct {
	entropy io.Reader
	clock   func() time.Time
	mu      sync.Mutex
}

// Option 生成器选项
type Option func(*Generator)

// WithClock 指定时间来源（测试场景）
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// NewGenerator 创建新的 ULID 生成器
// entropy: 熵源，传 nil 则使用 crypto/rand.Reader
func NewGenerator(entropy io.Reader, opts ...Option) *Generator {
	if entropy == nil {
		entropy = rand.Reader
	}
	// Monotonic 熵源保证同一毫秒内按生成顺序递增；它本身不是并发安全的，需要配合互斥锁
	if _, ok := entropy.(ulid.MonotonicReader); !ok {
		entropy = ulid.Monotonic(entropy, 0)
	}
	g := &Generator{entropy: entropy, clock: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 生成 ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.clock()), g.entropy)
}

// GenerateString 生成 ULID（字符串格式）
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// Parse 解析 ULID 字符串
func Parse(s string) (ulid.ULID, error) {
	return ulid.Parse(s)
}

// Time 提取 ULID 中的时间戳
func Time(id ulid.ULID) time.Time {
	return ulid.Time(id.Time())
}

// IsZero 检查 ULID 是否为零值
func IsZero(id ulid.ULID) bool {
	return id.Compare(ulid.ULID{}) == 0
}

// ToUUID 将 ULID 转换为 UUID（128 位直接复制，不保留排序特性）
func ToUUID(id ulid.ULID) uuid.UUID {
	var u uuid.UUID
	copy(u[:], id[:])
	return u
}
