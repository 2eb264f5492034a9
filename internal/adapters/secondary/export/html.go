package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"text/template"
)

// revealCDN pins the presentation runtime the exported documents load.
const revealCDN = "https://cdn.jsdelivr.net/npm/reveal.js@5.2.1"

type documentData struct {
	Title          string
	ThemeCSS       string
	Sections       string
	Width          int
	Height         int
	ProjectID      string
	AudioCacheJSON string
	CDN            string
}

// renderSections renders the per-slide <section> blocks. Each slide's CSS is
// scoped to its own section so one slide's rules cannot leak into another.
func renderSections(slides []RevealSlide, voice bool) string {
	var b strings.Builder
	for i, slide := range slides {
		styleAttr := ""
		if slide.ContainerStyle != "" {
			styleAttr = fmt.Sprintf(" style=%q", slide.ContainerStyle)
		}

		scoped := ""
		if len(slide.CSS) > 0 {
			scope := fmt.Sprintf(`[data-slide-scope="s%d"] .ct-slide`, i)
			scoped = ScopeCSS(strings.Join(slide.CSS, "\n"), scope)
		}

		autoslide := ""
		if voice {
			// The first slide starts immediately; later slides pause briefly
			// before their lead-in fragment fires.
			if i == 0 {
				autoslide = ` data-autoslide="0"`
			} else {
				autoslide = ` data-autoslide="100"`
			}
		}

		b.WriteString(fmt.Sprintf("\n    <section data-slide-scope=\"s%d\"%s>\n", i, autoslide))
		b.WriteString(fmt.Sprintf("      <div class=\"ct-slide\"%s>\n        %s\n      </div>\n", styleAttr, slide.HTML))
		if scoped != "" {
			b.WriteString("      <style>" + scoped + "</style>\n")
		}
		b.WriteString("    </section>")
	}
	return b.String()
}

var plainTemplate = template.Must(template.New("reveal").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>

    <link rel="stylesheet" href="{{.CDN}}/dist/reveal.css">

    <style>
    /* Theme CSS */
    {{.ThemeCSS}}

    .reveal .slides {
        text-align: left;
    }

    .ct-slide {
        width: 100%;
        height: 100%;
        position: relative;
    }

    @media print {
        body { print-color-adjust: exact; }
        .reveal .slides section { page-break-after: always; }
    }
    </style>
</head>
<body>
    <div class="reveal">
        <div class="slides">{{.Sections}}
        </div>
    </div>

    <script src="{{.CDN}}/dist/reveal.js"></script>

    <script>
        Reveal.initialize({
            hash: true,
            width: {{.Width}},
            height: {{.Height}},
            margin: 0,
            controls: true,
            progress: true,
            center: true,
            slideNumber: true,
            transition: 'none',
            keyboard: true,
            touch: true
        });
    </script>
</body>
</html>`))

var voiceTemplate = template.Must(template.New("voice").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Voice Presentation</title>

    <link rel="stylesheet" href="{{.CDN}}/dist/reveal.css">

    <style>
    /* Theme CSS */
    {{.ThemeCSS}}

    .reveal .slides {
        text-align: left;
    }

    .ct-slide {
        width: 100%;
        height: 100%;
        position: relative;
    }

    #startOverlay {
        position: fixed;
        top: 0;
        left: 0;
        right: 0;
        bottom: 0;
        background: rgba(0, 0, 0, 0.85);
        z-index: 1000;
        display: flex;
        align-items: center;
        justify-content: center;
        transition: opacity 0.3s ease;
    }

    #startOverlay.hidden {
        opacity: 0;
        pointer-events: none;
    }

    #startButton {
        background: #4CAF50;
        color: white;
        border: none;
        padding: 20px 40px;
        font-size: 24px;
        border-radius: 8px;
        cursor: pointer;
    }

    .voice-controls {
        position: fixed;
        bottom: 20px;
        left: 50%;
        transform: translateX(-50%);
        z-index: 100;
        background: rgba(0, 0, 0, 0.7);
        padding: 10px 20px;
        border-radius: 8px;
        display: none;
        gap: 15px;
        align-items: center;
        color: white;
    }

    .voice-controls.active {
        display: flex;
    }

    .voice-controls button {
        background: #4CAF50;
        color: white;
        border: none;
        padding: 8px 16px;
        border-radius: 4px;
        cursor: pointer;
        font-size: 14px;
    }

    .voice-controls input[type="range"] {
        width: 100px;
    }

    .reveal .slides section .fragment {
        opacity: 1 !important;
        visibility: inherit !important;
    }

    .reveal .controls .navigate-left,
    .reveal .controls .navigate-right,
    .reveal .controls .navigate-up,
    .reveal .controls .navigate-down {
        display: none;
    }

    @media print {
        body { print-color-adjust: exact; }
        .reveal .slides section { page-break-after: always; }
        .voice-controls { display: none; }
    }
    </style>

    {{if .AudioCacheJSON}}<script>
        window.CHALKTALK_AUDIO_CACHE = {{.AudioCacheJSON}};
        window.CHALKTALK_PROJECT_ID = "{{.ProjectID}}";
    </script>{{end}}
</head>
<body>
    <div class="reveal">
        <div class="slides">{{.Sections}}
        </div>
    </div>

    <div id="startOverlay">
        <button id="startButton">Start Presentation</button>
    </div>

    <div class="voice-controls">
        <button id="playPauseBtn">Pause</button>
        <button id="restartBtn">Restart</button>
        <div>
            <label>Speed: <span id="speedIndicator">1x</span></label>
            <input type="range" id="speedControl" min="0.5" max="2" step="0.25" value="1">
        </div>
        <div>
            <label>Volume:</label>
            <input type="range" id="volumeControl" min="0" max="1" step="0.1" value="1">
        </div>
    </div>

    <script src="{{.CDN}}/dist/reveal.js"></script>

    <script>
        (function() {
            let currentAudio = null;
            let isPlaying = false;
            let hasStarted = false;
            let playbackRate = 1;
            let volume = 1;
            let handledFragments = new WeakSet();

            const deck = new Reveal({
                hash: true,
                width: {{.Width}},
                height: {{.Height}},
                margin: 0,
                controls: true,
                progress: true,
                center: false,
                slideNumber: true,
                transition: 'none',
                keyboard: true,
                touch: true,
                autoSlide: 5000,
                autoSlideStoppable: true,
                fragments: true
            });

            deck.initialize();

            const startOverlay = document.getElementById('startOverlay');
            const startButton = document.getElementById('startButton');
            const voiceControls = document.querySelector('.voice-controls');
            const playPauseBtn = document.getElementById('playPauseBtn');
            const restartBtn = document.getElementById('restartBtn');
            const speedControl = document.getElementById('speedControl');
            const speedIndicator = document.getElementById('speedIndicator');
            const volumeControl = document.getElementById('volumeControl');

            startButton.addEventListener('click', () => {
                hasStarted = true;
                isPlaying = true;
                startOverlay.classList.add('hidden');
                voiceControls.classList.add('active');
                setTimeout(() => deck.next(), 500);
            });

            deck.on('fragmentshown', (event) => {
                const fragment = event.fragment;
                if (!hasStarted) return;
                if (handledFragments.has(fragment)) return;
                handledFragments.add(fragment);

                const audio = fragment.querySelector('audio[data-fragment-audio]');
                if (audio && isPlaying) {
                    playAudio(audio);
                }
            });

            deck.on('fragmenthidden', (event) => {
                const fragment = event.fragment;
                handledFragments.delete(fragment);
                const audio = fragment.querySelector('audio[data-fragment-audio]');
                if (audio && currentAudio === audio) {
                    stopAudio();
                }
            });

            deck.on('slidechanged', () => {
                if (currentAudio) {
                    stopAudio();
                }
                handledFragments = new WeakSet();
            });

            function playAudio(audio) {
                if (currentAudio) {
                    currentAudio.pause();
                    currentAudio.currentTime = 0;
                }

                const audioSrc = audio.getAttribute('data-audio-src');
                if (audioSrc && !audio.src) {
                    audio.src = audioSrc;
                }

                currentAudio = audio;
                audio.currentTime = 0;
                audio.playbackRate = playbackRate;
                audio.volume = volume;
                audio.play().catch(() => {});
            }

            function stopAudio() {
                if (currentAudio) {
                    currentAudio.pause();
                    currentAudio.currentTime = 0;
                    currentAudio = null;
                }
            }

            function updatePlaybackSettings() {
                document.querySelectorAll('audio').forEach(audio => {
                    audio.playbackRate = playbackRate;
                    audio.volume = volume;
                });

                document.querySelectorAll('.fragment[data-autoslide]').forEach(fragment => {
                    const originalDuration = parseInt(
                        fragment.getAttribute('data-original-autoslide') ||
                        fragment.getAttribute('data-autoslide') || '0'
                    );
                    if (!fragment.getAttribute('data-original-autoslide')) {
                        fragment.setAttribute('data-original-autoslide', String(originalDuration));
                    }
                    fragment.setAttribute('data-autoslide', String(Math.round(originalDuration / playbackRate)));
                });
            }

            playPauseBtn.addEventListener('click', () => {
                if (isPlaying) {
                    isPlaying = false;
                    playPauseBtn.textContent = 'Resume';
                    deck.pause();
                    if (currentAudio) currentAudio.pause();
                } else {
                    isPlaying = true;
                    playPauseBtn.textContent = 'Pause';
                    deck.resume();
                    if (currentAudio) currentAudio.play();
                }
            });

            restartBtn.addEventListener('click', () => {
                stopAudio();
                deck.slide(0, 0, 0);
                hasStarted = false;
                isPlaying = false;
                playPauseBtn.textContent = 'Pause';
                handledFragments = new WeakSet();
                startOverlay.classList.remove('hidden');
                voiceControls.classList.remove('active');
            });

            speedControl.addEventListener('input', (e) => {
                playbackRate = parseFloat(e.target.value);
                speedIndicator.textContent = playbackRate + 'x';
                updatePlaybackSettings();
            });

            volumeControl.addEventListener('input', (e) => {
                volume = parseFloat(e.target.value);
                updatePlaybackSettings();
            });
        })();
    </script>
</body>
</html>`))

func renderPlainDocument(data documentData) ([]byte, error) {
	return renderDocument(plainTemplate, data)
}

func renderVoiceDocument(data documentData) ([]byte, error) {
	return renderDocument(voiceTemplate, data)
}

func renderDocument(tmpl *template.Template, data documentData) ([]byte, error) {
	data.CDN = revealCDN
	data.Title = html.EscapeString(data.Title)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering export document: %w", err)
	}
	return buf.Bytes(), nil
}
