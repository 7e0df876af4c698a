package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"paper-docx/api/internal/mode"
)

// acceptImage downloads one page and adds it to the chat's (or album's) batch.
// A caption naming a mode overrides the chat mode for the whole batch.
func (r *Router) acceptImage(msg *tgbotapi.Message, fileID, filename string) {
	cid := msg.Chat.ID
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	imgBytes, err := r.download(url)
	if err != nil {
		r.logger().Warn("image download failed", zap.Int64("chat_id", cid), zap.Error(err))
		r.SendError(cid, err)
		return
	}

	m := r.Modes.Get(cid)
	cm, fromCaption := mode.Parse(msg.Caption)
	if fromCaption {
		m = cm
	}

	key := fmt.Sprintf("chat:%d", cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}
	first := r.addPage(key, cid, msg.MediaGroupID, m, fromCaption, filename, imgBytes)
	if first {
		r.send(cid, "Page received. If the paper has more pages, send them now and I will join them.")
	}
}

// addPage appends img to the open batch for key, replacing a batch that has
// already been taken for processing, and re-arms the debounce timer.
func (r *Router) addPage(key string, chatID int64, groupID string, m mode.Mode, fromCaption bool, filename string, img []byte) (first bool) {
	for {
		bi, _ := r.batches.LoadOrStore(key, &photoBatch{
			ChatID: chatID, Key: key, MediaGroupID: groupID, Mode: m, images: make([][]byte, 0, 4),
		})
		b := bi.(*photoBatch)

		b.mu.Lock()
		if b.done {
			b.mu.Unlock()
			r.batches.CompareAndDelete(key, b)
			continue
		}
		if fromCaption {
			b.Mode = m
		}
		if b.Filename == "" {
			b.Filename = filename
		}
		b.images = append(b.images, img)
		first = len(b.images) == 1
		if b.timer != nil {
			b.timer.Stop()
		}
		b.timer = time.AfterFunc(r.debounce(), func() { r.processBatch(b) })
		b.mu.Unlock()
		return first
	}
}

func (r *Router) debounce() time.Duration {
	if r.Debounce > 0 {
		return r.Debounce
	}
	return debounce
}

// processBatch converts b once. Stale timers of an already taken batch are no-ops.
func (r *Router) processBatch(b *photoBatch) {
	r.batches.CompareAndDelete(b.Key, b)

	b.mu.Lock()
	if b.done {
		b.mu.Unlock()
		return
	}
	b.done = true
	if b.timer != nil {
		b.timer.Stop()
	}
	images := append([][]byte(nil), b.images...)
	chatID, m, filename := b.ChatID, b.Mode, b.Filename
	b.mu.Unlock()

	if len(images) == 0 {
		return
	}
	if len(images) > maxPages {
		r.send(chatID, fmt.Sprintf("Only the first %d pages are used.", maxPages))
		images = images[:maxPages]
	}

	img := images[0]
	if len(images) > 1 {
		merged, err := combineAsOne(images)
		if err != nil {
			r.send(chatID, "❌ Could not join the pages: "+err.Error())
			return
		}
		img = merged
		filename = ""
	}
	if filename == "" {
		filename = fmt.Sprintf("telegram_%d.jpg", chatID)
	}
	r.convertAndReply(context.Background(), chatID, img, filename, m)
}

func combineAsOne(images [][]byte) ([]byte, error) {
	decoded := make([]image.Image, 0, len(images))
	widths := make([]int, 0, len(images))
	heights := make([]int, 0, len(images))

	for _, b := range images {
		img, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			if try, err2 := tryDecodeStrict(b); err2 == nil {
				img = try
			} else {
				return nil, err
			}
		}
		decoded = append(decoded, img)
		bounds := img.Bounds()
		widths = append(widths, bounds.Dx())
		heights = append(heights, bounds.Dy())
	}

	maxW := 0
	sumH := 0
	for i := range decoded {
		if widths[i] > maxW {
			maxW = widths[i]
		}
		sumH += heights[i]
	}
	if maxW == 0 || sumH == 0 {
		return nil, errors.New("empty images")
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, sumH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	y := 0
	for i, img := range decoded {
		w := widths[i]
		h := heights[i]
		x := (maxW - w) / 2
		rect := image.Rect(x, y, x+w, y+h)
		draw.Draw(dst, rect, img, img.Bounds().Min, draw.Over)
		y += h
	}

	totalPx := maxW * sumH
	final := image.Image(dst)
	if totalPx > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(totalPx))
		newW := int(float64(maxW)*scale + 0.5)
		newH := int(float64(sumH)*scale + 0.5)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		final = scaleDownNN(dst, newW, newH)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, final, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func tryDecodeStrict(b []byte) (image.Image, error) {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return jpeg.Decode(bytes.NewReader(b))
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return png.Decode(bytes.NewReader(b))
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	return img, err
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW := sb.Dx()
	srcH := sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func (r *Router) download(url string) ([]byte, error) {
	c := r.Client
	if c == nil {
		c = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := c.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
