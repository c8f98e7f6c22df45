package conf

import (
	"bytes"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

/* ========================================================================
 * Config Loader - 配置加载器
 * ========================================================================
 * 职责: 统一配置加载，支持 YAML / JSON / 环境变量
 * 技术: Viper + mapstructure decode hooks
 * 特性:
 *   - ${VAR} / ${VAR:-default} 占位符在解析前展开
 *   - APP_ 前缀环境变量覆盖（key 中的 "." 替换为 "_"）
 *   - 可追加自定义 decode hook（例如逗号分隔字符串 -> 切片）
 * ======================================================================== */

// DefaultEnvPrefix 默认环境变量前缀
const DefaultEnvPrefix = "APP"

// Loader 定义配置加载接口
type Loader interface {
	Load(config any) error
}

// Option 加载器选项
type Option func(*viperLoader)

// WithEnvPrefix 自定义环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(l *viperLoader) {
		l.envPrefix = prefix
	}
}

// WithDecodeHook 追加 decode hook，在默认 hook（duration、逗号切片）之前执行
func WithDecodeHook(hooks ...mapstructure.DecodeHookFunc) Option {
	return func(l *viperLoader) {
		l.hooks = append(l.hooks, hooks...)
	}
}

type viperLoader struct {
	configPath string
	configName string
	configType string
	envPrefix  string
	content    []byte
	hooks      []mapstructure.DecodeHookFunc
}

var envPlaceholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

func expandEnvPlaceholders(raw string) string {
	return envPlaceholderPattern.ReplaceAllStringFunc(raw, func(match string) string {
		sub := envPlaceholderPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}

		// 兼容 bash 的 ${VAR:-default} 语义：未设置或为空字符串时使用 default
		if val, ok := os.LookupEnv(sub[1]); ok && val != "" {
			return val
		}
		if len(sub) >= 3 {
			return sub[2]
		}
		return ""
	})
}

// NewLoader 创建一个新的配置加载器
// configPath: 配置文件目录
// configName: 配置文件名 (不含扩展名)
// configType: 配置文件类型 (yaml, json 等)
func NewLoader(configPath, configName, configType string, opts ...Option) Loader {
	l := &viperLoader{
		configPath: configPath,
		configName: configName,
		configType: configType,
		envPrefix:  DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLoaderWithEnvPrefix 创建带自定义环境变量前缀的配置加载器
func NewLoaderWithEnvPrefix(configPath, configName, configType, envPrefix string, opts ...Option) Loader {
	return NewLoader(configPath, configName, configType, append([]Option{WithEnvPrefix(envPrefix)}, opts...)...)
}

// NewContentLoader 从内存内容加载（内嵌规则集、测试）
func NewContentLoader(content []byte, configType string, opts ...Option) Loader {
	l := &viperLoader{
		configType: configType,
		envPrefix:  DefaultEnvPrefix,
		content:    content,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *viperLoader) Load(config any) error {
	raw, err := l.read()
	if err != nil {
		return err
	}

	// 在进入 viper 解析前，做 ${VAR} / ${VAR:-default} 的环境变量占位符展开
	v := viper.New()
	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if raw != nil {
		v.SetConfigType(l.configType)
		if err := v.ReadConfig(bytes.NewBufferString(expandEnvPlaceholders(string(raw)))); err != nil {
			return err
		}
	}

	return v.Unmarshal(config, viper.DecodeHook(l.decodeHook()))
}

// read 读取原始配置内容，配置文件不存在时返回 nil（仅使用环境变量）
func (l *viperLoader) read() ([]byte, error) {
	if l.content != nil {
		return l.content, nil
	}

	// 让 viper 定位配置文件（支持 AddConfigPath + SetConfigName 的搜索逻辑）
	finder := viper.New()
	finder.AddConfigPath(l.configPath)
	finder.SetConfigName(l.configName)
	finder.SetConfigType(l.configType)

	if err := finder.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		return nil, nil
	}
	return os.ReadFile(finder.ConfigFileUsed())
}

func (l *viperLoader) decodeHook() mapstructure.DecodeHookFunc {
	hooks := append([]mapstructure.DecodeHookFunc{}, l.hooks...)
	hooks = append(hooks,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	return mapstructure.ComposeDecodeHookFunc(hooks...)
}

// StringToTrimmedSliceHook 将分隔字符串解码为去除空白、丢弃空项的字符串切片
func StringToTrimmedSliceHook(sep string) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}
		raw, _ := data.(string)
		parts := strings.Split(raw, sep)
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
}
