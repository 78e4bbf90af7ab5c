package otel

// 指标名称
const (
	// 知识组装
	MetricPathsIncluded   = "kgpath.paths.included"
	MetricPathsOverflow   = "kgpath.paths.overflow"
	MetricKnowledgeTokens = "kgpath.knowledge.tokens"

	// 样本构建
	MetricExamplesBuilt   = "kgpath.examples.built"
	MetricExamplesErrors  = "kgpath.examples.errors"
	MetricExampleDuration = "kgpath.example.duration"
	MetricInputTokens     = "kgpath.example.input_tokens"

	// 预测回复
	MetricLLMRequests        = "llm.requests"
	MetricLLMRequestDuration = "llm.request.duration"
	MetricLLMErrors          = "llm.errors"
)

type metricInfo struct {
	description string
	unit        string
}

var metricInfos = map[string]metricInfo{
	MetricPathsIncluded:   {"Relation paths included in assembled knowledge", "{path}"},
	MetricPathsOverflow:   {"Assemblies stopped early by the token budget", "1"},
	MetricKnowledgeTokens: {"Token length of assembled knowledge", "{token}"},

	MetricExamplesBuilt:   {"Examples built", "1"},
	MetricExamplesErrors:  {"Records that failed to build", "1"},
	MetricExampleDuration: {"Duration of a single example build", "ms"},
	MetricInputTokens:     {"Token length of example inputs", "{token}"},

	MetricLLMRequests:        {"Prediction requests", "1"},
	MetricLLMRequestDuration: {"Duration of prediction requests", "ms"},
	MetricLLMErrors:          {"Failed prediction requests", "1"},
}

// describe 返回指标的描述和单位，未知名称返回空值
func describe(name string) metricInfo {
	return metricInfos[name]
}
