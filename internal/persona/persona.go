// Package persona maps a requested conversation mode to the system
// instruction and message template sent to the language model.
//
// Modes form a closed set of canonical keys. Deprecated keys from earlier
// releases are kept working through a fixed alias table that folds them onto
// their canonical replacement. Resolution is total: any input, including the
// empty string and unknown keys, yields a usable persona (the generic
// fallback) rather than an error.
//
// All tables are defined at init and never mutated, so the package is safe
// for concurrent use without locking.
package persona

import (
	"fmt"
	"strings"
)

// Mode is a canonical persona key.
type Mode string

const (
	// ModeDaily teaches everyday conversational Japanese. It replaces the
	// retired "tutor" mode.
	ModeDaily Mode = "daily"

	// ModeOffice teaches workplace Japanese with a focus on keigo.
	ModeOffice Mode = "office"

	// ModeMedical helps users communicate at hospitals and pharmacies.
	ModeMedical Mode = "medical"

	// ModeComfortSoft is the gentle companion persona. It replaces the
	// retired "otaku_waifu" mode.
	ModeComfortSoft Mode = "comfort_soft"

	// ModeComfortSteady is the calm, grounded companion persona. It replaces
	// the retired "onee_san" mode.
	ModeComfortSteady Mode = "comfort_steady"

	// ModeGeneric is the fallback for unrecognized or empty mode strings.
	ModeGeneric Mode = "generic"
)

// DefaultMode is the canonical mode applied when a chat request leaves the
// mode blank. The demo page preselects it.
const DefaultMode = ModeDaily

// Persona bundles everything the dispatcher needs to address the model in a
// given mode.
type Persona struct {
	// Mode is the canonical key this persona is registered under.
	Mode Mode

	// Name is a short human-readable label, used by the demo page and logs.
	Name string

	// SystemInstruction is the fixed role/tone/format contract for the model.
	SystemInstruction string

	// MessageTemplate optionally wraps the raw user text with structural
	// output instructions. It contains a single %s placeholder; when empty,
	// the user text is forwarded unmodified.
	MessageTemplate string
}

// Wrap produces the final user-content string for the provider call.
func (p Persona) Wrap(message string) string {
	if p.MessageTemplate == "" {
		return message
	}
	return fmt.Sprintf(p.MessageTemplate, message)
}

// lessonTemplate structures teaching replies: the Japanese sentence, its kana
// reading, a Chinese explanation of tone and context, then alternatives.
const lessonTemplate = "请按下面的结构回答：\n" +
	"1. 日语原句\n" +
	"2. 假名读音\n" +
	"3. 中文讲解（语气、使用场景）\n" +
	"4. 1-2个可替换的说法（可选）\n\n" +
	"用户输入：%s"

// aliases folds retired mode keys onto their canonical replacement.
var aliases = map[string]Mode{
	"tutor":       ModeDaily,
	"otaku_waifu": ModeComfortSoft,
	"onee_san":    ModeComfortSteady,
}

var personas = map[Mode]Persona{
	ModeDaily: {
		Mode: ModeDaily,
		Name: "日常会话",
		SystemInstruction: "你是专业日语老师，用户是中文母语者。" +
			"使用自然简洁的日语回答，重要之处用少量中文解释。" +
			"每次给出1-3个实用表达，结合日本生活和日剧场景讲解，避免废话。",
		MessageTemplate: lessonTemplate,
	},
	ModeOffice: {
		Mode: ModeOffice,
		Name: "职场敬语",
		SystemInstruction: "你是商务日语教练，用户是在日或准备赴日工作的中文母语者。" +
			"专注职场场景：敬语、邮件、会议、电话应对。" +
			"给出地道说法，并用中文点明敬语等级和使用分寸。",
		MessageTemplate: lessonTemplate,
	},
	ModeMedical: {
		Mode: ModeMedical,
		Name: "就医沟通",
		SystemInstruction: "你是医疗场景的日语助手，用户是中文母语者。" +
			"帮助用户在医院和药店沟通：描述症状、理解医嘱、预约挂号。" +
			"表达必须准确易懂，关键医疗词汇附中文对照，并提醒用户重要事项要当面和医生确认。",
		MessageTemplate: lessonTemplate,
	},
	ModeComfortSoft: {
		Mode: ModeComfortSoft,
		Name: "软萌陪伴",
		SystemInstruction: "你是可爱、懂ACG文化的治愈系陪伴角色。" +
			"主要用口语日语聊天，语气黏人但健康、尊重边界，" +
			"可以顺手教简单日语表达，但不输出露骨或违反平台政策的内容。",
	},
	ModeComfortSteady: {
		Mode: ModeComfortSteady,
		Name: "沉稳陪伴",
		SystemInstruction: "你是沉稳可靠的陪伴角色，像一位年长的朋友。" +
			"用平和的口语日语倾听和回应，给出务实的安慰和建议，" +
			"不评判、不说教，必要时用中文确认用户的情绪。",
	},
	ModeGeneric: {
		Mode:              ModeGeneric,
		Name:              "通用助手",
		SystemInstruction: "你是一个友好的日语学习助手。",
	},
}

// canonicalOrder fixes the listing order for Selectable.
var canonicalOrder = []Mode{
	ModeDaily,
	ModeOffice,
	ModeMedical,
	ModeComfortSoft,
	ModeComfortSteady,
}

// Normalize maps a raw mode string to its canonical key. Deprecated aliases
// resolve to their replacement; anything unrecognized resolves to ModeGeneric.
func Normalize(raw string) Mode {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ModeGeneric
	}
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	if _, ok := personas[Mode(key)]; ok {
		return Mode(key)
	}
	return ModeGeneric
}

// Resolve returns the persona for a raw mode string. It is total: unknown
// input yields the generic fallback persona.
func Resolve(raw string) Persona {
	return personas[Normalize(raw)]
}

// Selectable lists the canonical personas in display order, excluding the
// generic fallback.
func Selectable() []Persona {
	out := make([]Persona, 0, len(canonicalOrder))
	for _, m := range canonicalOrder {
		out = append(out, personas[m])
	}
	return out
}
