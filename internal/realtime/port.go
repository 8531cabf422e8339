package realtime

import (
	"fmt"
	"net"

	"restaurant_chat/pkg/logger"
)

// NegotiatePort пробует занять выделенный порт для realtime-трафика,
// перебирая кандидатов по порядку. Порт основного HTTP-сервера пропускается.
// Первый успешный bind выигрывает; если все кандидаты заняты, возвращается
// nil-листенер — realtime обслуживается основным сервером. Переговоры
// выполняются один раз на жизнь процесса, повторных попыток нет.
func NegotiatePort(candidates []int, primaryPort int, log logger.Logger) (net.Listener, int) {
	for _, port := range candidates {
		if port == primaryPort {
			continue
		}

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			// Порт занят или нет прав — пробуем следующий
			log.Warn("Realtime port unavailable", "port", port, "error", err)
			continue
		}

		log.Info("Dedicated realtime listener bound", "port", port)
		return ln, port
	}

	log.Info("No dedicated realtime port available, reusing primary listener", "port", primaryPort)
	return nil, primaryPort
}
