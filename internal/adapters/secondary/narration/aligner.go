package narration

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// FragmentAligner rewrites slide HTML for narrated playback. Every narration
// element gets a fragment wrapper with auto-advance timing derived from its
// audio duration plus a small buffer, and an embedded audio element pointing
// at the cached clip. Non-first slides get an empty lead-in fragment at index
// 0 so the slide transition itself has a beat before narration starts; the
// real fragments shift up by one to make room.
type FragmentAligner struct {
	cfg entities.TTSConfig
}

// NewFragmentAligner creates an aligner using the given playback tuning.
func NewFragmentAligner(cfg entities.TTSConfig) *FragmentAligner {
	return &FragmentAligner{cfg: cfg}
}

// Align rewrites slideHTML with playback structure for the given audio, in
// document order. Audio beyond the slide's narration elements is ignored, as
// are elements beyond the audio.
func (a *FragmentAligner) Align(slideHTML string, slideIndex int, audio []ports.AlignedAudio) (string, error) {
	doc, err := html.Parse(strings.NewReader(slideHTML))
	if err != nil {
		return "", fmt.Errorf("parsing slide %d HTML: %w", slideIndex, err)
	}

	body := findBody(doc)
	if body == nil {
		return slideHTML, nil
	}

	if slideIndex > 0 {
		leadIn := &html.Node{
			Type: html.ElementNode,
			Data: "div",
			Attr: []html.Attribute{
				{Key: "class", Val: "fragment"},
				{Key: "data-autoslide", Val: strconv.Itoa(a.cfg.GetLeadInAutoslide())},
				{Key: "data-fragment-index", Val: "0"},
			},
		}
		body.InsertBefore(leadIn, body.FirstChild)
	}

	var narrated []*html.Node
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if _, ok := attr(n, entities.NarrationAttr); ok {
			narrated = append(narrated, n)
		}
	})

	for i, element := range narrated {
		if i >= len(audio) {
			break
		}
		clip := audio[i]

		wrapper := closestFragment(element)
		if wrapper == nil {
			wrapper = &html.Node{
				Type: html.ElementNode,
				Data: "div",
				Attr: []html.Attribute{{Key: "class", Val: "fragment"}},
			}
			parent := element.Parent
			parent.InsertBefore(wrapper, element)
			parent.RemoveChild(element)
			wrapper.AppendChild(element)
		}

		duration := clip.DurationMS
		if duration <= 0 {
			duration = a.cfg.GetDefaultDurationMS()
		}

		setAttr(wrapper, "data-autoslide", strconv.Itoa(duration+a.cfg.GetAudioBufferMS()))
		setAttr(wrapper, entities.NarrationAttr, clip.TTSText)

		adjusted := i
		if slideIndex > 0 {
			adjusted = i + 1
		}
		setAttr(wrapper, "data-fragment-index", strconv.Itoa(adjusted))

		audioEl := &html.Node{
			Type: html.ElementNode,
			Data: "audio",
			Attr: []html.Attribute{
				{Key: "data-audio-src", Val: clip.Src},
				{Key: "data-fragment-audio", Val: "true"},
				{Key: "data-duration", Val: strconv.Itoa(duration)},
			},
		}
		wrapper.AppendChild(audioEl)
	}

	return renderChildren(body)
}

// findBody returns the document's body node.
func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	walk(doc, func(n *html.Node) {
		if body == nil && n.Type == html.ElementNode && n.Data == "body" {
			body = n
		}
	})
	return body
}

// closestFragment returns the nearest ancestor carrying the fragment class,
// the element itself included.
func closestFragment(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if class, ok := attr(cur, "class"); ok {
			for _, c := range strings.Fields(class) {
				if c == "fragment" {
					return cur
				}
			}
		}
	}
	return nil
}

// setAttr replaces or appends the named attribute.
func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// renderChildren serializes a node's children, the innerHTML equivalent.
func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("rendering slide HTML: %w", err)
		}
	}
	return buf.String(), nil
}

// Ensure FragmentAligner implements ports.PlaybackAligner
var _ ports.PlaybackAligner = (*FragmentAligner)(nil)
