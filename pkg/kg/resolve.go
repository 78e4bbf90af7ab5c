package kg

// Lookup 把词表 ID 映射为表面字符串
type Lookup interface {
	Lookup(id string) (string, bool)
}

// Resolver 使用实体词表和关系词表把路径中的 ID 替换为表面字符串。
// 未登录的字段保持原样。
type Resolver struct {
	Entities  Lookup
	Relations Lookup
}

// ResolveTriplet 解析单个三元组
func (r Resolver) ResolveTriplet(t Triplet) Triplet {
	return Triplet{
		Head:     resolve(r.Entities, t.Head),
		Relation: resolve(r.Relations, t.Relation),
		Tail:     resolve(r.Entities, t.Tail),
	}
}

// ResolvePath 返回解析后的新路径，不修改输入
func (r Resolver) ResolvePath(path RelationPath) RelationPath {
	if len(path) == 0 {
		return path
	}
	out := make(RelationPath, len(path))
	for i, t := range path {
		out[i] = r.ResolveTriplet(t)
	}
	return out
}

func resolve(l Lookup, id string) string {
	if l == nil {
		return id
	}
	if s, ok := l.Lookup(id); ok {
		return s
	}
	return id
}
