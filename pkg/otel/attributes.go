package otel

import "go.opentelemetry.io/otel/attribute"

// 属性键
const (
	AttrPathCount         = "kgpath.path.count"
	AttrPathsIncluded     = "kgpath.paths.included"
	AttrKnowledgeBudget   = "kgpath.knowledge.budget"
	AttrKnowledgeTokens   = "kgpath.knowledge.tokens"
	AttrKnowledgeOverflow = "kgpath.knowledge.overflow"

	AttrDatasetLine  = "dataset.line"
	AttrDatasetTrain = "dataset.train"
	AttrEpisodeID    = "dataset.episode_id"
	AttrTurnID       = "dataset.turn_id"
	AttrInputTokens  = "dataset.input_tokens"
	AttrLabelTokens  = "dataset.label_tokens"

	AttrLLMProvider = "llm.provider"
	AttrLLMModel    = "llm.model"
	AttrLLMStatus   = "llm.status"
)

// DatasetLine 源文件行号（从 1 开始）
func DatasetLine(line int) attribute.KeyValue {
	return attribute.Int(AttrDatasetLine, line)
}

// Episode 对话与轮次标识
func Episode(episodeID, turnID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrEpisodeID, episodeID),
		attribute.String(AttrTurnID, turnID),
	}
}

// LLM 回复器名称与模型
func LLM(provider, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrLLMProvider, provider),
		attribute.String(AttrLLMModel, model),
	}
}
