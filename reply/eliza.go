package reply

import (
	"encoding/binary"
	"hash/fnv"
	"regexp"
	"strings"
)

// Matcher 规则匹配能力的抽象：返回匹配结束位置（用于截取尾部）与是否命中。
// 入参为消息的小写形式，返回位置只对该小写串有效：Unicode 小写化可能改变
// 字节长度，位置不能套用到原串。
type Matcher interface {
	Match(low string) (tail int, ok bool)
}

// Substring 子串匹配器。
type Substring string

// Match 实现 Matcher。
func (s Substring) Match(low string) (int, bool) {
	idx := strings.Index(low, string(s))
	if idx < 0 {
		return 0, false
	}
	return idx + len(s), true
}

// Pattern 正则匹配器。
type Pattern struct{ re *regexp.Regexp }

// Regex 编译正则匹配器（表达式非法会 panic，规则表为静态内容）。
func Regex(expr string) Pattern { return Pattern{re: regexp.MustCompile(expr)} }

// Match 实现 Matcher。
func (p Pattern) Match(low string) (int, bool) {
	loc := p.re.FindStringIndex(low)
	if loc == nil {
		return 0, false
	}
	return loc[1], true
}

// Rule 一条回复规则：匹配器 + 候选模板。Matcher 为 nil 表示兜底规则。
// 规则顺序即优先级，首个命中者生效。
type Rule struct {
	Matcher   Matcher
	Templates []string
}

// reflections 人称反转表，用于把用户语句尾部改写进回复。
var reflections = map[string]string{
	"i":     "you",
	"me":    "you",
	"my":    "your",
	"am":    "are",
	"you":   "I",
	"your":  "my",
	"yours": "mine",
	"mine":  "yours",
}

// defaultRules 内置回复规则表，末尾为无条件兜底。
var defaultRules = []Rule{
	{Substring("i need"), []string{
		"Why do you need {x}?",
		"Would it really help you to get {x}?",
		"Are you sure you need {x}?",
	}},
	{Substring("i am"), []string{
		"How long have you been {x}?",
		"How do you feel about being {x}?",
		"Why do you say you're {x}?",
	}},
	{Substring("i feel"), []string{
		"Do you often feel {x}?",
		"When do you usually feel {x}?",
		"What makes you feel {x}?",
	}},
	{Substring("because"), []string{
		"Is that the real reason?",
		"What other reasons come to mind?",
		"Does that reason apply to anything else?",
	}},
	{Substring("why"), []string{
		"What do you think?",
		"Why do you ask?",
		"What answer would satisfy you?",
	}},
	{Regex(`\b(hello|hi|hey)\b`), []string{
		"Hello. How are you feeling today?",
		"Hi. What's on your mind?",
	}},
	{Substring("mother"), []string{
		"Tell me more about your family.",
		"How is your relationship with your mother?",
	}},
	{Substring("father"), []string{
		"Tell me more about your family.",
		"How is your relationship with your father?",
	}},
	{Substring("always"), []string{
		"Can you think of a specific example?",
		"When exactly does that happen?",
	}},
	{nil, []string{
		"Please tell me more.",
		"How does that make you feel?",
		"Why do you say that?",
		"Can you elaborate on that?",
		"Let's explore that a bit further.",
	}},
}

// Generate 生成对最近一条用户消息的确定性回复。
// 模板选择以 (消息内容, seed) 为键，与任务提交顺序无关：同一消息 + 同一
// 种子在任何时刻得到同一回复。
func Generate(userText string, seed int64) string {
	s := strings.TrimSpace(userText)
	if s == "" {
		return "Hello. What would you like to talk about?"
	}
	low := strings.ToLower(s)
	for _, r := range defaultRules {
		var tail int
		if r.Matcher != nil {
			idx, ok := r.Matcher.Match(low)
			if !ok {
				continue
			}
			tail = idx
		}
		// 尾部在小写串上截取，与匹配位置同源
		x := "that"
		if t := strings.Trim(low[tail:], " .!?"); t != "" {
			x = reflect(t)
		}
		tpl := r.Templates[pick(s, seed, len(r.Templates))]
		return strings.ReplaceAll(tpl, "{x}", x)
	}
	return "Please tell me more."
}

// reflect 对尾部逐词做人称反转。
func reflect(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if r, ok := reflections[strings.ToLower(w)]; ok {
			words[i] = r
		}
	}
	return strings.Join(words, " ")
}

// pick 内容键控模板选择：FNV-1a(seed || content) mod n。
// FNV 跨平台逐位稳定，保证同内容同种子命中同一模板。
func pick(content string, seed int64, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New64a()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(seed))
	_, _ = h.Write(b[:])
	_, _ = h.Write([]byte(content))
	return int(h.Sum64() % uint64(n))
}
