package dom

// LinkView is the typed attribute view of a link reference.
type LinkView struct{ n *Node }

// MetaView is the typed attribute view of a metadata element.
type MetaView struct{ n *Node }

// ScriptView is the typed attribute view of a script reference.
type ScriptView struct{ n *Node }

// AsLink returns the link view of n when n is a link reference.
func (n *Node) AsLink() (LinkView, bool) {
	return LinkView{n}, n.Kind == KindLink
}

// AsMeta returns the metadata view of n when n is a metadata element.
func (n *Node) AsMeta() (MetaView, bool) {
	return MetaView{n}, n.Kind == KindMeta
}

// AsScript returns the script view of n when n is a script reference.
func (n *Node) AsScript() (ScriptView, bool) {
	return ScriptView{n}, n.Kind == KindScript
}

func (v LinkView) Node() *Node { return v.n }
func (v LinkView) Href() string { return v.n.Attrs.Value("href") }
func (v LinkView) SetHref(s string) { v.n.Attrs.Set("href", s) }
func (v LinkView) Rel() string { return v.n.Attrs.Value("rel") }
func (v LinkView) SetRel(s string) { v.n.Attrs.Set("rel", s) }
func (v LinkView) Type() string { return v.n.Attrs.Value("type") }
func (v LinkView) SetType(s string) { v.n.Attrs.Set("type", s) }
func (v LinkView) Media() string { return v.n.Attrs.Value("media") }

func (v MetaView) Node() *Node { return v.n }
func (v MetaView) Name() string { return v.n.Attrs.Value("name") }
func (v MetaView) SetName(s string) { v.n.Attrs.Set("name", s) }
func (v MetaView) Content() string { return v.n.Attrs.Value("content") }
func (v MetaView) SetContent(s string) { v.n.Attrs.Set("content", s) }

// HTTPEquiv returns the http-equiv attribute.
func (v MetaView) HTTPEquiv() string { return v.n.Attrs.Value("http-equiv") }

// Scheme returns the legacy scheme attribute.
func (v MetaView) Scheme() string { return v.n.Attrs.Value("scheme") }

func (v ScriptView) Node() *Node { return v.n }
func (v ScriptView) Src() string { return v.n.Attrs.Value("src") }
func (v ScriptView) SetSrc(s string) { v.n.Attrs.Set("src", s) }
func (v ScriptView) Type() string { return v.n.Attrs.Value("type") }
func (v ScriptView) SetType(s string) { v.n.Attrs.Set("type", s) }
