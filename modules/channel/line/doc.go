// Package line implements the LINE Messaging API channel for linekit.
//
// The module registers itself as "channel.line" and bridges the LINE
// platform and the platform-agnostic model in pkg/message:
//
//   - webhook batches are verified against the channel secret, converted to
//     message.Event values and handed to the event router
//   - reply messages are converted to the SDK message types and sent with
//     the event's reply token
//   - message content is streamed from the blob API into the download
//     directory, which is served under /downloaded
//
// Bind must be called with the public base URL once the gateway is
// listening and before Start.
package line
