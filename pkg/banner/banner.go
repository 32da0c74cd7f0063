package banner

import (
	"fmt"

	"crimewatch/pkg/config"
)

const banner = `
 ██████╗██████╗ ██╗███╗   ███╗███████╗██╗    ██╗ █████╗ ████████╗ ██████╗██╗  ██╗
██╔════╝██╔══██╗██║████╗ ████║██╔════╝██║    ██║██╔══██╗╚══██╔══╝██╔════╝██║  ██║
██║     ██████╔╝██║██╔████╔██║█████╗  ██║ █╗ ██║███████║   ██║   ██║     ███████║
██║     ██╔══██╗██║██║╚██╔╝██║██╔══╝  ██║███╗██║██╔══██║   ██║   ██║     ██╔══██║
╚██████╗██║  ██║██║██║ ╚═╝ ██║███████╗╚███╔███╔╝██║  ██║   ██║   ╚██████╗██║  ██║
 ╚═════╝╚═╝  ╚═╝╚═╝╚═╝     ╚═╝╚══════╝ ╚══╝╚══╝ ╚═╝  ╚═╝   ╚═╝    ╚═════╝╚═╝  ╚═╝
`

// PrintWithEff prints the startup banner with the effective runtime info.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", eff.Addr)
	fmt.Printf("DB Path:  %s\n", eff.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if eff.Source != "" {
		fmt.Printf("Config source: %s\n", eff.Source)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/chat/messages      - Send a chat message (JSON: text)")
	fmt.Println("GET  /v1/chat/stream        - Live conversation (SSE, session)")
	fmt.Println("POST /v1/reports            - File a crime report (session)")
	fmt.Println("GET  /v1/reports/stream     - Live incident feed (SSE, session)")
	fmt.Println("GET  /v1/stations           - Police station directory")
	fmt.Println("POST /v1/signup, /v1/login  - Accounts")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/chat/messages' -d '{\"text\": \"hello\"}'\n", eff.Addr)
	fmt.Printf("curl 'http://localhost%s/v1/stations'\n", eff.Addr)
}
