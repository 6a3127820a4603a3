package bot

// Result is one outbound action produced by a handler. The variant set is
// closed: every implementation lives in this package, and the dispatcher's
// type switch covers all of them.
type Result interface {
	result()
}

// markupCarrier is implemented by the content variants, which may carry a
// keyboard. Redirect and Void cannot.
type markupCarrier interface {
	setMarkup(m ReplyMarkup)
	markup() ReplyMarkup
}

// TextMessage sends an HTML-formatted text message.
type TextMessage struct {
	HTML   string
	Markup ReplyMarkup
}

// Photo, Audio, Video, Voice and Document send a media message referencing
// a file by URL or platform file id, with an optional caption.
type Photo struct {
	FileRef string
	Caption string
	Markup  ReplyMarkup
}

type Audio struct {
	FileRef string
	Caption string
	Markup  ReplyMarkup
}

type Video struct {
	FileRef string
	Caption string
	Markup  ReplyMarkup
}

type Voice struct {
	FileRef string
	Caption string
	Markup  ReplyMarkup
}

type Document struct {
	FileRef string
	Caption string
	Markup  ReplyMarkup
}

// Redirect re-enters the router at Path without a new inbound event. It
// halts dispatch of the remaining results in its batch.
type Redirect struct {
	Path string
}

// Void produces no new message; with TryDeleteHistory it still trims the
// previous one per the configured history level.
type Void struct {
	TryDeleteHistory bool
}

func (*TextMessage) result() {}
func (*Photo) result()       {}
func (*Audio) result()       {}
func (*Video) result()       {}
func (*Voice) result()       {}
func (*Document) result()    {}
func (*Redirect) result()    {}
func (*Void) result()        {}

func (m *TextMessage) setMarkup(r ReplyMarkup) { m.Markup = r }
func (m *TextMessage) markup() ReplyMarkup     { return m.Markup }
func (p *Photo) setMarkup(r ReplyMarkup)       { p.Markup = r }
func (p *Photo) markup() ReplyMarkup           { return p.Markup }
func (a *Audio) setMarkup(r ReplyMarkup)       { a.Markup = r }
func (a *Audio) markup() ReplyMarkup           { return a.Markup }
func (v *Video) setMarkup(r ReplyMarkup)       { v.Markup = r }
func (v *Video) markup() ReplyMarkup           { return v.Markup }
func (v *Voice) setMarkup(r ReplyMarkup)       { v.Markup = r }
func (v *Voice) markup() ReplyMarkup           { return v.Markup }
func (d *Document) setMarkup(r ReplyMarkup)    { d.Markup = r }
func (d *Document) markup() ReplyMarkup        { return d.Markup }

// View accumulates the results of one handler invocation, in dispatch
// order. The Add* methods return the view for chaining.
type View struct {
	results []Result
}

func NewView(results ...Result) *View {
	return &View{results: results}
}

func (v *View) Results() []Result {
	return v.results
}

func (v *View) Add(r Result) *View {
	v.results = append(v.results, r)
	return v
}

func (v *View) AddMessage(html string) *View {
	return v.Add(&TextMessage{HTML: html})
}

func (v *View) AddPhoto(fileRef, caption string) *View {
	return v.Add(&Photo{FileRef: fileRef, Caption: caption})
}

func (v *View) AddAudio(fileRef, caption string) *View {
	return v.Add(&Audio{FileRef: fileRef, Caption: caption})
}

func (v *View) AddVideo(fileRef, caption string) *View {
	return v.Add(&Video{FileRef: fileRef, Caption: caption})
}

func (v *View) AddVoice(fileRef, caption string) *View {
	return v.Add(&Voice{FileRef: fileRef, Caption: caption})
}

func (v *View) AddDocument(fileRef, caption string) *View {
	return v.Add(&Document{FileRef: fileRef, Caption: caption})
}

func (v *View) AddRedirect(path string) *View {
	return v.Add(&Redirect{Path: path})
}

func (v *View) AddVoid(tryDeleteHistory bool) *View {
	return v.Add(&Void{TryDeleteHistory: tryDeleteHistory})
}

// AddInlineKeyboard attaches an inline keyboard to the most recently added
// result. Calling it on an empty view, or after a Redirect or Void, is a
// programming error and panics.
func (v *View) AddInlineKeyboard(rows ...[]InlineKeyboardButton) *View {
	return v.attachMarkup(InlineKeyboardMarkup{InlineKeyboard: rows})
}

// AddReplyKeyboard attaches a reply keyboard with the resize/selective
// defaults the platform presents best.
func (v *View) AddReplyKeyboard(rows ...[]KeyboardButton) *View {
	return v.attachMarkup(ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
		Selective:      true,
	})
}

func (v *View) attachMarkup(m ReplyMarkup) *View {
	if len(v.results) == 0 {
		panic("bot: keyboard attached to a view with no results")
	}
	last := v.results[len(v.results)-1]
	carrier, ok := last.(markupCarrier)
	if !ok {
		panic("bot: keyboard attached to a result that cannot carry one")
	}
	carrier.setMarkup(m)
	return v
}
