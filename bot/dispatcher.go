package bot

import (
	"context"
	"fmt"
	"log/slog"
)

// DispatchOutcome reports how a result batch ended. A redirect stops the
// batch early and hands its path back to the router's loop.
type DispatchOutcome struct {
	Redirected   bool
	RedirectPath string
}

// Dispatcher performs a handler's results against the messaging gateway and
// keeps the chat's previous-message id current.
type Dispatcher struct {
	gateway Gateway
	store   ChatStore
	history HistoryLevel
	msgLog  MessageLog
	logger  *slog.Logger
}

func NewDispatcher(gateway Gateway, store ChatStore, history HistoryLevel, msgLog MessageLog, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		gateway: gateway,
		store:   store,
		history: history,
		msgLog:  msgLog,
		logger:  logger,
	}
}

// Dispatch processes results in order. Trimming the previous message is
// best-effort and never fails the batch; a failed send does.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, results []Result) (DispatchOutcome, error) {
	for _, res := range results {
		prevID, hasPrev, err := d.store.PreviousMessageID(ctx, chatID)
		if err != nil {
			return DispatchOutcome{}, err
		}

		switch v := res.(type) {
		case *Redirect:
			return DispatchOutcome{Redirected: true, RedirectPath: v.Path}, nil

		case *Void:
			if v.TryDeleteHistory && hasPrev {
				d.tryTrimHistory(ctx, chatID, prevID)
			}

		case *TextMessage, *Photo, *Audio, *Video, *Voice, *Document:
			if hasPrev {
				d.tryTrimHistory(ctx, chatID, prevID)
			}
			sent, err := d.send(ctx, chatID, res)
			if err != nil {
				return DispatchOutcome{}, err
			}
			if err := d.store.SetPreviousMessageID(ctx, chatID, sent.MessageID); err != nil {
				return DispatchOutcome{}, err
			}
			if d.msgLog != nil {
				if err := d.msgLog.Write(ctx, chatID, sent.Text, DirectionOut); err != nil {
					return DispatchOutcome{}, err
				}
			}

		default:
			// The Result set is sealed; reaching this means a variant was
			// added without teaching the dispatcher about it.
			return DispatchOutcome{}, fmt.Errorf("unhandled result type %T", res)
		}
	}
	return DispatchOutcome{}, nil
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, res Result) (SentMessage, error) {
	switch v := res.(type) {
	case *TextMessage:
		return d.gateway.SendMessage(ctx, chatID, v.HTML, v.Markup)
	case *Photo:
		return d.gateway.SendPhoto(ctx, chatID, v.FileRef, v.Caption, v.Markup)
	case *Audio:
		return d.gateway.SendAudio(ctx, chatID, v.FileRef, v.Caption, v.Markup)
	case *Video:
		return d.gateway.SendVideo(ctx, chatID, v.FileRef, v.Caption, v.Markup)
	case *Voice:
		return d.gateway.SendVoice(ctx, chatID, v.FileRef, v.Caption, v.Markup)
	case *Document:
		return d.gateway.SendDocument(ctx, chatID, v.FileRef, v.Caption, v.Markup)
	default:
		return SentMessage{}, fmt.Errorf("unhandled content type %T", res)
	}
}

// tryTrimHistory applies the configured history level to an old message.
// Failures (message already gone, permission error) are logged and
// swallowed.
func (d *Dispatcher) tryTrimHistory(ctx context.Context, chatID, messageID int64) {
	var err error
	switch d.history {
	case HistoryKeep:
		return
	case HistoryMarkupOnly:
		err = d.gateway.EditMessageReplyMarkup(ctx, chatID, messageID)
	case HistoryDelete:
		err = d.gateway.DeleteMessage(ctx, chatID, messageID)
	}
	if err != nil {
		d.logger.Debug("history_trim_skipped", "chat_id", chatID, "message_id", messageID, "level", d.history.String(), "error", err.Error())
	}
}
