package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/script"
)

// voicePool is the fixed pool for auto voice assignment. Entries alternate
// perceived gender so adjacent speakers contrast; ids follow the Kokoro
// voice catalog but remain engine-agnostic descriptors.
var voicePool = []engine.Voice{
	{ID: "af_heart", Style: "warm", Gender: "female"},
	{ID: "am_adam", Style: "confident", Gender: "male"},
	{ID: "bf_emma", Style: "bright", Gender: "female"},
	{ID: "bm_george", Style: "measured", Gender: "male"},
	{ID: "af_nova", Style: "calm", Gender: "female"},
	{ID: "am_echo", Style: "curious", Gender: "male"},
}

// AutoAssign maps each distinct speaker label to a pool voice by
// first-appearance order. Deterministic: the same ordered label set always
// yields the same descriptors.
func AutoAssign(s script.Script) map[string]engine.Voice {
	speakers := s.Speakers()
	voices := make(map[string]engine.Voice, len(speakers))
	for i, label := range speakers {
		voices[label] = voicePool[i%len(voicePool)]
	}
	return voices
}

// LoadVoiceMap reads an explicit speaker-to-voice mapping from a JSON file,
// the shape `{"host": {"voice_id": "am_adam"}, ...}`. Used for both the
// --voices flag and a configured voice-map path.
func LoadVoiceMap(path string) (map[string]engine.Voice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read voices file: %w", err)
	}
	var voices map[string]engine.Voice
	if err := json.Unmarshal(data, &voices); err != nil {
		return nil, fmt.Errorf("unable to parse voices file: %w", err)
	}
	return voices, nil
}
