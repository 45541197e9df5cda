package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"doi-frontend/internal/view"
	"doi-frontend/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	WriteWait         = 5 * time.Second
	HeartbeatInterval = 30 * time.Second
	ReadTimeout       = 2 * HeartbeatInterval
	MaxMessageSize    = 512
)

// Server 一个 websocket 连接，把页面状态推给浏览器
type Server struct {
	Id       string
	Socket   *websocket.Conn
	Send     chan []byte // 待发消息
	LastTime int64       // 最后一次收到客户端消息的时间，秒
}

// Hub 记录当前所有连接
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Server
}

var Manager = &Hub{clients: map[string]*Server{}}

func (h *Hub) Add(s *Server) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[s.Id] = s
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReadAndWrite 订阅 v 的状态变化并逐条推送，先推一次当前状态。
// 连接断开后返回
func (s *Server) ReadAndWrite(v *view.View) {
	states := make(chan view.State, 16)
	sub := v.Subscribe(states)
	Manager.Add(s)
	log.Logger.Debug("websocket connected", zap.String("id", s.Id), zap.Int("clients", Manager.Len()))
	defer func() {
		sub.Unsubscribe()
		Manager.Remove(s.Id)
		_ = s.Socket.Close()
		log.Logger.Debug("websocket closed",
			zap.String("id", s.Id),
			zap.Int64("last_seen", atomic.LoadInt64(&s.LastTime)),
			zap.Int("clients", Manager.Len()))
	}()

	done := make(chan struct{})
	go s.read(done)

	if err := s.writeState(v.Snapshot()); err != nil {
		log.Logger.Debug("websocket write", zap.String("id", s.Id), zap.Error(err))
		return
	}

	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		var err error
		select {
		case st := <-states:
			err = s.writeState(st)
		case msg := <-s.Send:
			err = s.write(websocket.TextMessage, msg)
		case <-ticker.C:
			err = s.Socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteWait))
		case <-sub.Err():
			return
		case <-done:
			return
		}
		if err != nil {
			log.Logger.Debug("websocket write", zap.String("id", s.Id), zap.Error(err))
			return
		}
	}
}

func (s *Server) writeState(st view.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.write(websocket.TextMessage, b)
}

func (s *Server) write(messageType int, b []byte) error {
	_ = s.Socket.SetWriteDeadline(time.Now().Add(WriteWait))
	return s.Socket.WriteMessage(messageType, b)
}

// read 只处理心跳，客户端发 "ping" 回 "pong"
func (s *Server) read(done chan<- struct{}) {
	defer close(done)
	s.Socket.SetReadLimit(MaxMessageSize)
	_ = s.Socket.SetReadDeadline(time.Now().Add(ReadTimeout))
	s.Socket.SetPongHandler(func(string) error {
		return s.Socket.SetReadDeadline(time.Now().Add(ReadTimeout))
	})
	for {
		_, msg, err := s.Socket.ReadMessage()
		if err != nil {
			return
		}
		atomic.StoreInt64(&s.LastTime, time.Now().Unix())
		_ = s.Socket.SetReadDeadline(time.Now().Add(ReadTimeout))
		if string(msg) == "ping" {
			select {
			case s.Send <- []byte("pong"):
			default:
			}
		}
	}
}
