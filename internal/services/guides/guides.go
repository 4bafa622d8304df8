package guides

import (
	"fmt"
	"sort"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
)

// Service serves static step-by-step integration guides keyed by
// topic.
type Service struct {
	guides map[string]string
}

// NewService creates the guide service with the built-in topics.
func NewService() *Service {
	return &Service{guides: builtinGuides}
}

var _ interfaces.GuideService = (*Service)(nil)

// Get returns the guide text for a topic.
func (s *Service) Get(topic string) (string, error) {
	if guide, ok := s.guides[topic]; ok {
		return guide, nil
	}
	return "", fmt.Errorf("unknown guide topic %q (available: %v)", topic, s.Topics())
}

// Topics lists the available guide topics, sorted.
func (s *Service) Topics() []string {
	topics := make([]string, 0, len(s.guides))
	for topic := range s.guides {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

var builtinGuides = map[string]string{
	"sdk_install": `# SDK Installation (Android)

1. Add the AppsFlyer SDK dependency to your app module:
   implementation 'com.appsflyer:af-android-sdk:6.+'
2. Initialize the SDK in your Application class with your dev key:
   AppsFlyerLib.getInstance().init(DEV_KEY, conversionListener, this)
3. Start the SDK:
   AppsFlyerLib.getInstance().start(this)
4. Enable debug logging while integrating:
   AppsFlyerLib.getInstance().setDebugLog(true)
5. Launch the app on a connected device, then run the
   verify_install_attribution tool to confirm the first conversion
   was reported.
`,
	"deep_linking": `# Deep Link Integration

1. Configure your OneLink template in the AppsFlyer dashboard and note
   the subdomain.
2. Add an intent filter for the OneLink domain to your launcher
   activity (Android App Links with autoVerify).
3. Register a DeepLinkListener:
   AppsFlyerLib.getInstance().subscribeForDeepLink(listener)
4. Resolve your test link with the resolve_onelink tool so the
   verifier knows the expected parameters.
5. Open the link on the device, then run verify_deep_link. Direct
   opens report is_deferred=false; first-open-after-install flows
   report is_deferred=true.
`,
	"in_app_events": `# In-App Event Integration

1. Report events through the SDK:
   AppsFlyerLib.getInstance().logEvent(context, AFInAppEventType.PURCHASE, values)
2. Keep debug logging enabled so prepare and send entries appear in
   logcat.
3. Trigger the event in the app, then run verify_in_app_event with the
   event name. The verifier correlates the "preparing data" entry with
   its send confirmation by task id.
`,
}
