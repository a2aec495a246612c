package posts

// Thread is the logical relationship of a post to other posts. Exactly
// one variant applies to a resolved post; variant selection is a strict
// priority order (repost, then reply, then quote, then single).
//
// The variant set is sealed: the unexported method keeps external
// packages from adding variants, so type switches stay exhaustive.
type Thread interface {
	// Root returns the post the thread was resolved for.
	Root() Post

	thread()
}

// SingleThread is a standalone post.
type SingleThread struct {
	Post Post
}

// ReplyThread is a post inside a reply chain. Replies holds the
// ancestor posts ordered nearest-parent-first: index 0 is the immediate
// parent and the last element is the chain root. Callers rendering the
// chain top-down must reverse it. Quoted is the post quoted by the
// chain root, when it quotes one.
type ReplyThread struct {
	Post    Post
	Replies []Post
	Quoted  *Post
}

// QuoteThread is a post quoting another post.
type QuoteThread struct {
	Post     Post
	Original Post
}

// RepostThread is another author's post reshared by Reposter.
type RepostThread struct {
	Post     Post
	Reposter Account
}

func (t SingleThread) Root() Post { return t.Post }
func (t ReplyThread) Root() Post  { return t.Post }
func (t QuoteThread) Root() Post  { return t.Post }
func (t RepostThread) Root() Post { return t.Post }

func (SingleThread) thread() {}
func (ReplyThread) thread()  {}
func (QuoteThread) thread()  {}
func (RepostThread) thread() {}
